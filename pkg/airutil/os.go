package airutil

import "github.com/drone/envsubst"

// ExpandEnv substitutes ${VAR} style references in s with
// values from the environment. If s cannot be parsed it is
// returned unchanged.
func ExpandEnv(s string) string {
	val, err := envsubst.EvalEnv(s)
	if err != nil {
		return s
	}
	return val
}
