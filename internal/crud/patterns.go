package crud

import "strings"

// URL patterns use the "{id}" placeholder. EchoPath rewrites a pattern into
// the ":id" form Echo registers.

func ListURLPattern(prefix string) string          { return collection(prefix) }
func CreateURLPattern(prefix string) string        { return collection(prefix) }
func RetrieveURLPattern(prefix string) string      { return member(prefix) }
func UpdateURLPattern(prefix string) string        { return member(prefix) }
func PartialUpdateURLPattern(prefix string) string { return member(prefix) }
func DeleteURLPattern(prefix string) string        { return member(prefix) }

func EchoPath(pattern string) string {
	return strings.ReplaceAll(pattern, "{id}", ":id")
}

func collection(prefix string) string { return "/" + strings.Trim(prefix, "/") }

func member(prefix string) string { return collection(prefix) + "/{id}" }
