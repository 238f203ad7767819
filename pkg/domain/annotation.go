package domain

import (
	"sort"
)

// QName is a namespaced annotation key.
type QName struct {
	Namespace string
	Name      string
}

// String renders the key as "namespace::name".
func (q QName) String() string {
	if q.Namespace == "" {
		return q.Name
	}
	return q.Namespace + "::" + q.Name
}

// Annotations maps namespaced keys to values. Values are scalars, lists or
// structured records exactly as the upstream reader produced them.
type Annotations map[QName]any

// annotated is embedded by Node and Relation.
type annotated struct {
	Annotations Annotations
}

// Annotate sets (or overwrites) an annotation.
func (a *annotated) Annotate(namespace, name string, value any) {
	if a.Annotations == nil {
		a.Annotations = make(Annotations)
	}
	a.Annotations[QName{Namespace: namespace, Name: name}] = value
}

// Annotation returns the value stored under the given key.
func (a *annotated) Annotation(namespace, name string) (any, bool) {
	v, ok := a.Annotations[QName{Namespace: namespace, Name: name}]
	return v, ok
}

// StringAnnotation returns the value under the given key if it is a string.
func (a *annotated) StringAnnotation(namespace, name string) (string, bool) {
	v, ok := a.Annotation(namespace, name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// HasAnnotation reports whether the key is present.
func (a *annotated) HasAnnotation(namespace, name string) bool {
	_, ok := a.Annotations[QName{Namespace: namespace, Name: name}]
	return ok
}

// HasAnnotationNamed reports whether any namespace carries the given name.
func (a *annotated) HasAnnotationNamed(name string) bool {
	for k := range a.Annotations {
		if k.Name == name {
			return true
		}
	}
	return false
}

// RemoveAnnotation deletes the key and returns the removed value.
func (a *annotated) RemoveAnnotation(namespace, name string) (any, bool) {
	k := QName{Namespace: namespace, Name: name}
	v, ok := a.Annotations[k]
	if ok {
		delete(a.Annotations, k)
	}
	return v, ok
}

// CountAnnotations counts annotations outside the excluded namespaces.
func (a *annotated) CountAnnotations(exclude ...string) int {
	n := 0
outer:
	for k := range a.Annotations {
		for _, ns := range exclude {
			if k.Namespace == ns {
				continue outer
			}
		}
		n++
	}
	return n
}

// AnnotationKeys returns all keys sorted by namespace, then name.
func (a *annotated) AnnotationKeys() []QName {
	keys := make([]QName, 0, len(a.Annotations))
	for k := range a.Annotations {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Namespace != keys[j].Namespace {
			return keys[i].Namespace < keys[j].Namespace
		}
		return keys[i].Name < keys[j].Name
	})
	return keys
}

func (a annotated) clone() annotated {
	if a.Annotations == nil {
		return annotated{}
	}
	out := make(Annotations, len(a.Annotations))
	for k, v := range a.Annotations {
		out[k] = v
	}
	return annotated{Annotations: out}
}
