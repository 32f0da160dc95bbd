package redemption

import (
	"crypto/rand"
	"strings"
)

// Crockford base32 without I, L, O and U so codes survive being read aloud.
const codeAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const (
	codeGroups    = 4
	codeGroupSize = 4
)

// Generate returns n random codes shaped like "AS-7K2M-Q9XD-4HTV-B0CE".
// prefix is normalized and omitted when empty.
func Generate(prefix string, n int) ([]string, error) {
	prefix = NormalizeCode(prefix)
	codes := make([]string, 0, n)
	buf := make([]byte, codeGroups*codeGroupSize)

	var sb strings.Builder
	for range n {
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}

		sb.Reset()
		if prefix != "" {
			sb.WriteString(prefix)
			sb.WriteByte('-')
		}
		for i, b := range buf {
			if i > 0 && i%codeGroupSize == 0 {
				sb.WriteByte('-')
			}
			sb.WriteByte(codeAlphabet[int(b)%len(codeAlphabet)])
		}
		codes = append(codes, sb.String())
	}
	return codes, nil
}
