package usage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/billingkit/pkg/limits"
	"github.com/dmitrymomot/billingkit/pkg/redis"
)

const (
	monthLayout = "2006-01"
	dateLayout  = "2006-01-02"
)

// createScript writes the period hash and indexes it only when the hash is absent.
// KEYS[1] period hash, KEYS[2] index zset; ARGV[1] score, ARGV[2] member, ARGV[3:] field/value pairs.
var createScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV, 3))
redis.call('ZADD', KEYS[2], ARGV[1], ARGV[2])
return 1
`)

// incrScript adds to a counter of an existing period.
// KEYS[1] period hash; ARGV[1] field, ARGV[2] amount, ARGV[3] updated_at.
// Returns -1 for a missing period and -2 when HINCRBY overflows.
var incrScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
local ok = redis.pcall('HINCRBY', KEYS[1], ARGV[1], ARGV[2])
if type(ok) == 'table' and ok.err then
	return -2
end
redis.call('HSET', KEYS[1], 'updated_at', ARGV[3])
return 1
`)

// setScript overwrites fields of an existing period.
// KEYS[1] period hash; ARGV field/value pairs.
var setScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1
`)

// RedisStore implements Store on Redis hashes, one per (organization, month),
// with a sorted set per organization indexing its months.
type RedisStore struct {
	client goredis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisStore returns a store writing keys under prefix.
func NewRedisStore(client goredis.UniversalClient, prefix string) *RedisStore {
	if client == nil {
		panic("usage: redis client cannot be nil")
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RedisStore) periodKey(orgID uuid.UUID, start time.Time) string {
	return redis.Key(s.prefix, "usage", orgID.String(), start.UTC().Format(monthLayout))
}

func (s *RedisStore) indexKey(orgID uuid.UUID) string {
	return redis.Key(s.prefix, "usage", orgID.String(), "periods")
}

func (s *RedisStore) Get(ctx context.Context, orgID uuid.UUID, start time.Time) (*Period, error) {
	return s.load(ctx, s.periodKey(orgID, start))
}

func (s *RedisStore) Create(ctx context.Context, p *Period) error {
	args := []any{p.PeriodStart.UTC().Unix(), p.PeriodStart.UTC().Format(monthLayout)}
	args = append(args, encodePeriod(p)...)

	created, err := createScript.Run(ctx, s.client,
		[]string{s.periodKey(p.OrganizationID, p.PeriodStart), s.indexKey(p.OrganizationID)},
		args...,
	).Int64()
	if err != nil {
		return err
	}
	if created == 0 {
		return ErrPeriodExists
	}
	return nil
}

func (s *RedisStore) Increment(ctx context.Context, orgID uuid.UUID, start time.Time, kind CounterKind, amount int64) (*Period, error) {
	field, ok := counterColumns[kind]
	if !ok {
		return nil, errors.Join(ErrUnknownCounter, fmt.Errorf("counter %q", kind))
	}

	key := s.periodKey(orgID, start)
	res, err := incrScript.Run(ctx, s.client, []string{key},
		field, amount, s.now().UTC().Format(time.RFC3339Nano),
	).Int64()
	if err != nil {
		return nil, err
	}
	switch res {
	case -1:
		return nil, ErrPeriodNotFound
	case -2:
		return nil, fmt.Errorf("%w: counter %q would overflow", ErrInvalidAmount, kind)
	}
	return s.load(ctx, key)
}

func (s *RedisStore) SetSnapshots(ctx context.Context, orgID uuid.UUID, start time.Time, snap Snapshot) (*Period, error) {
	key := s.periodKey(orgID, start)

	args := make([]any, 0, 2*len(snap)+2)
	for _, res := range SnapshotResources {
		if n, ok := snap[res]; ok {
			args = append(args, snapshotColumns[res], n)
		}
	}
	if len(args) == 0 {
		return s.load(ctx, key)
	}
	args = append(args, "updated_at", s.now().UTC().Format(time.RFC3339Nano))

	res, err := setScript.Run(ctx, s.client, []string{key}, args...).Int64()
	if err != nil {
		return nil, err
	}
	if res < 0 {
		return nil, ErrPeriodNotFound
	}
	return s.load(ctx, key)
}

func (s *RedisStore) List(ctx context.Context, orgID uuid.UUID, limit int) ([]*Period, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	months, err := s.client.ZRevRange(ctx, s.indexKey(orgID), 0, stop).Result()
	if err != nil {
		return nil, err
	}
	if len(months) == 0 {
		return nil, nil
	}

	cmds := make([]*goredis.MapStringStringCmd, len(months))
	_, err = s.client.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for i, m := range months {
			cmds[i] = pipe.HGetAll(ctx, redis.Key(s.prefix, "usage", orgID.String(), m))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]*Period, 0, len(cmds))
	for _, cmd := range cmds {
		if len(cmd.Val()) == 0 {
			continue
		}
		p, err := decodePeriod(cmd.Val())
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *RedisStore) load(ctx context.Context, key string) (*Period, error) {
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrPeriodNotFound
	}
	return decodePeriod(fields)
}

func encodePeriod(p *Period) []any {
	return []any{
		"id", p.ID.String(),
		"organization_id", p.OrganizationID.String(),
		"period_start", p.PeriodStart.UTC().Format(dateLayout),
		"period_end", p.PeriodEnd.UTC().Format(dateLayout),
		"emails_sent", p.EmailsSent,
		"sms_sent", p.SMSSent,
		"ai_analyses_used", p.AIAnalysesUsed,
		"projects_count", p.ProjectsCount,
		"automations_count", p.AutomationsCount,
		"customers_count", p.CustomersCount,
		"created_at", p.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at", p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func decodePeriod(fields map[string]string) (*Period, error) {
	var (
		p   Period
		err error
	)
	parse := func(fn func() error) {
		if err == nil {
			err = fn()
		}
	}
	parseInt := func(field string, dst *int64) {
		parse(func() error {
			v, ok := fields[field]
			if !ok {
				return nil
			}
			n, e := strconv.ParseInt(v, 10, 64)
			*dst = n
			return e
		})
	}
	parseTime := func(field, layout string, dst *time.Time) {
		parse(func() error {
			t, e := time.Parse(layout, fields[field])
			*dst = t.UTC()
			return e
		})
	}

	parse(func() (e error) { p.ID, e = uuid.Parse(fields["id"]); return })
	parse(func() (e error) { p.OrganizationID, e = uuid.Parse(fields["organization_id"]); return })
	parseTime("period_start", dateLayout, &p.PeriodStart)
	parseTime("period_end", dateLayout, &p.PeriodEnd)
	parseInt(counterColumns[CounterEmailsSent], &p.EmailsSent)
	parseInt(counterColumns[CounterSMSSent], &p.SMSSent)
	parseInt(counterColumns[CounterAIAnalysesUsed], &p.AIAnalysesUsed)
	parseInt(snapshotColumns[limits.ResourceProjects], &p.ProjectsCount)
	parseInt(snapshotColumns[limits.ResourceAutomations], &p.AutomationsCount)
	parseInt(snapshotColumns[limits.ResourceCustomers], &p.CustomersCount)
	parseTime("created_at", time.RFC3339Nano, &p.CreatedAt)
	parseTime("updated_at", time.RFC3339Nano, &p.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("decode usage period: %w", err)
	}
	return &p, nil
}
