package duplicates

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"strconv"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// ErrDecode reports page bytes that are not a decodable image.
var ErrDecode = errors.New("page decode failed")

// Fingerprint returns the 64-bit average hash of an encoded image as 16
// lowercase hex digits.
func Fingerprint(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	hash, err := goimagehash.AverageHash(img)
	if err != nil {
		return "", fmt.Errorf("%w: average hash: %w", ErrDecode, err)
	}
	return formatHash(hash.GetHash()), nil
}

func formatHash(v uint64) string {
	return fmt.Sprintf("%016x", v)
}

func parseHash(s string) (*goimagehash.ImageHash, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return nil, fmt.Errorf("parse fingerprint %q: %w", s, err)
	}
	return goimagehash.NewImageHash(v, goimagehash.AHash), nil
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b string) (int, error) {
	ha, err := parseHash(a)
	if err != nil {
		return 0, err
	}
	hb, err := parseHash(b)
	if err != nil {
		return 0, err
	}
	return ha.Distance(hb)
}

// Match is a candidate fingerprint close to a reference.
type Match struct {
	Index    int // position in the candidate list
	Hash     string
	Distance int
}

// WithinHamming returns the candidates whose distance to ref is at most
// maxDistance, in candidate order. Candidates that do not parse are skipped.
// This is the nearest-match filter used to pick a cover, not exact duplicate
// grouping.
func WithinHamming(ref string, candidates []string, maxDistance int) ([]Match, error) {
	refHash, err := parseHash(ref)
	if err != nil {
		return nil, err
	}
	var matches []Match
	for i, candidate := range candidates {
		h, err := parseHash(candidate)
		if err != nil {
			continue
		}
		d, err := refHash.Distance(h)
		if err != nil {
			continue
		}
		if d <= maxDistance {
			matches = append(matches, Match{Index: i, Hash: candidate, Distance: d})
		}
	}
	return matches, nil
}
