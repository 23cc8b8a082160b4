package userdir

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"policyrag/internal/domain"
)

// Directory maps user identifiers to their policy documents. User identity
// is a trusted input; there is no authentication here.
type Directory struct {
	users map[string]domain.UserPolicies
}

type usersFile struct {
	Users map[string]map[string]string `yaml:"users"`
}

// Load reads the users file. A missing file yields the built-in demo
// directory so a fresh checkout runs out of the box.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return demoDirectory(), nil
		}
		return nil, err
	}
	var parsed usersFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}
	users := make(map[string]domain.UserPolicies, len(parsed.Users))
	for name, policies := range parsed.Users {
		up := make(domain.UserPolicies, len(policies))
		for policyType, doc := range policies {
			up[domain.PolicyType(policyType)] = doc
		}
		users[name] = up
	}
	return &Directory{users: users}, nil
}

func demoDirectory() *Directory {
	return &Directory{users: map[string]domain.UserPolicies{
		"alice": {domain.PolicyAuto: "auto_policy_1.md"},
		"bob":   {domain.PolicyProperty: "property_policy_1.md"},
		"carol": {
			domain.PolicyAuto:     "auto_policy_2.md",
			domain.PolicyProperty: "property_policy_2.md",
		},
	}}
}

// Users returns all user identifiers in sorted order.
func (d *Directory) Users() []string {
	out := make([]string, 0, len(d.users))
	for name := range d.users {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Policies returns the user's policy set. The second return is false for
// unknown users.
func (d *Directory) Policies(user string) (domain.UserPolicies, bool) {
	up, ok := d.users[user]
	return up, ok
}

// DirSource reads policy documents from a directory, keyed by filename.
type DirSource struct {
	dir string
}

func NewDirSource(dir string) *DirSource { return &DirSource{dir: dir} }

func (s *DirSource) Read(id string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, id))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
