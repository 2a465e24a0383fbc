package entities

import (
	"fmt"
	"strings"
)

// Identity is the name and email recorded as both author and committer.
type Identity struct {
	Name  string
	Email string
}

// IsZero reports whether neither field is set.
func (i Identity) IsZero() bool {
	return i.Name == "" && i.Email == ""
}

// Merge fills the empty fields of i from fallback.
func (i Identity) Merge(fallback Identity) Identity {
	if i.Name == "" {
		i.Name = fallback.Name
	}
	if i.Email == "" {
		i.Email = fallback.Email
	}
	return i
}

// Validate fails with ErrMissingIdentity unless both fields are set.
func (i Identity) Validate() error {
	var missing []string
	if strings.TrimSpace(i.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(i.Email) == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMissingIdentity, strings.Join(missing, " and "))
	}
	return nil
}

func (i Identity) String() string {
	return fmt.Sprintf("%s <%s>", i.Name, i.Email)
}
