// Package v1alpha1 contains the wire types shared by every entity kind
// tinyvmm persists: Bridge and VirtualMachine. Every entity is the same
// envelope — apiVersion, kind, metadata, spec — serialized as JSON on the
// wire and at rest.
package v1alpha1

// TypeMeta identifies an entity's kind and schema version.
type TypeMeta struct {
	Kind       string `json:"kind" yaml:"kind"`
	APIVersion string `json:"apiVersion" yaml:"apiVersion"`
}

// ObjectMeta is the metadata every persisted entity carries. Name is the
// only field the data model requires; it must match the DNS-label-sequence
// pattern and is unique within its kind.
type ObjectMeta struct {
	Name string `json:"name" yaml:"name"`
}

// DeepCopy returns a copy of t.
func (t TypeMeta) DeepCopy() TypeMeta {
	return t
}

// DeepCopy returns a copy of m.
func (m ObjectMeta) DeepCopy() ObjectMeta {
	return m
}
