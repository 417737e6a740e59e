package suite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ErrInconsistent marks a suite whose name promises something its
// algorithms do not deliver.
var ErrInconsistent = errors.New("suite: inconsistent record")

// key widths advertised in suite names, in bytes.
var advertisedKeyLen = []struct {
	token string
	len   int
}{
	{"_AES_128_", 16},
	{"_AES_256_", 32},
	{"_TWOFISH_128_", 16},
	{"_TWOFISH_256_", 32},
}

// digests advertised by the trailing part of suite names.
var advertisedDigest = []struct {
	suffix string
	name   string
}{
	{"_SHA256", "sha256"},
	{"_SHA384", "sha384"},
	{"_BLAKE2B256", "blake2b256"},
}

// Validate checks every suite against its own name and against the others,
// and returns all the defects it finds at once.
func Validate(suites ...*Suite) error {
	var result *multierror.Error
	seen := make(map[uint16]string, len(suites))
	for _, s := range suites {
		if prev, ok := seen[s.Code]; ok {
			result = multierror.Append(result, fmt.Errorf("%w: %s used by %s and %s",
				ErrDuplicateCode, s.CodeString(), prev, s.Name))
		} else {
			seen[s.Code] = s.Name
		}
		for _, err := range check(s) {
			result = multierror.Append(result, fmt.Errorf("%w: %s (%s): %s",
				ErrInconsistent, s.Name, s.CodeString(), err))
		}
	}
	return result.ErrorOrNil()
}

// Check runs Validate over every suite of the registry.
func (r *Registry) Check() error {
	return Validate(r.List()...)
}

func check(s *Suite) []string {
	var defects []string
	if s.Cipher == nil || s.Digest == nil || s.KeyExchange == nil {
		return append(defects, "missing algorithm")
	}
	name := strings.ToUpper(s.Name)
	for _, adv := range advertisedKeyLen {
		if strings.Contains(name, adv.token) && s.KeyLen != adv.len {
			defects = append(defects, fmt.Sprintf("name advertises %d byte keys, record has %d",
				adv.len, s.KeyLen))
		}
	}
	if !s.Cipher.KeySizes.Valid(s.KeyLen) {
		defects = append(defects, fmt.Sprintf("cipher %s does not accept %d byte keys",
			s.Cipher.Name, s.KeyLen))
	}
	if strings.Contains(name, "_GCM_") && s.Cipher.Mode != "gcm" {
		defects = append(defects, fmt.Sprintf("name advertises GCM, cipher %s runs %s without authentication",
			s.Cipher.Name, s.Cipher.Mode))
	}
	if strings.Contains(name, "_CBC_") && s.Cipher.Mode != "cbc" {
		defects = append(defects, fmt.Sprintf("name advertises CBC, cipher %s runs %s",
			s.Cipher.Name, s.Cipher.Mode))
	}
	for _, adv := range advertisedDigest {
		if strings.HasSuffix(name, adv.suffix) && s.Digest.Name != adv.name {
			defects = append(defects, fmt.Sprintf("name advertises %s, digest is %s", adv.name, s.Digest.Name))
		}
	}
	ephemeral := strings.Contains(name, "_ECDHE_")
	if ephemeral && s.KeyExchange.Group == nil {
		defects = append(defects, fmt.Sprintf("name advertises ECDHE, key exchange %s is key transport",
			s.KeyExchange.Name))
	}
	if !ephemeral && s.KeyExchange.Group != nil {
		defects = append(defects, fmt.Sprintf("key exchange %s is ephemeral, name does not advertise ECDHE",
			s.KeyExchange.Name))
	}
	return defects
}
