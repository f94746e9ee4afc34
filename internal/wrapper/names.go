package wrapper

import (
	"fmt"
	"path/filepath"
	"strings"
)

// NameSet tracks the wrapper names assigned during a single synthesis run.
// It is an explicit accumulator so repeated in-process runs start clean.
type NameSet struct {
	taken map[string]string //wrapper name -> target script it was claimed for
}

func NewNameSet() *NameSet {
	return &NameSet{taken: make(map[string]string)}
}

// Claim derives a unique wrapper name for the given script.
// The plain name is the script's basename without suffix, prefixed if
// configured. On collision a path-derived name is used instead: the script's
// path relative to root, suffix stripped, with path separators, underscores,
// and spaces joined by dashes. If even that name is taken the claim fails and
// the caller is expected to report the script as skipped.
func (s *NameSet) Claim(scriptPath string, root string, prefix string, suffix string) (name string, err error) {
	plain := prefix + strings.TrimSuffix(filepath.Base(scriptPath), suffix)
	if _, collision := s.taken[plain]; !collision {
		s.taken[plain] = scriptPath
		return plain, nil
	}

	relative, relErr := filepath.Rel(root, scriptPath)
	if relErr != nil {
		relative = filepath.Base(scriptPath)
	}
	disambiguated := prefix + joinPathElements(strings.TrimSuffix(relative, suffix))
	if holder, collision := s.taken[disambiguated]; collision {
		return "", fmt.Errorf("wrapper name %s already claimed by %s", disambiguated, holder)
	}
	s.taken[disambiguated] = scriptPath
	return disambiguated, nil
}

// Names yields all claimed names mapped to their target scripts.
func (s *NameSet) Names() map[string]string {
	return s.taken
}

func joinPathElements(relativePath string) string {
	joined := strings.NewReplacer(
		string(filepath.Separator), "-",
		"/", "-",
		"_", "-",
		" ", "-",
	).Replace(relativePath)
	return strings.Trim(joined, "-")
}
