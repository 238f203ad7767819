/*
Package domain contains the document graph model rewritten by the squeezer engine.

It defines the entities of an annotated discourse graph: Nodes (tokens,
constituents, signals and secondary-edge scaffolds), Relations (dominance and
pointing), Layers and namespaced Annotations. Storage is arena-style: nodes and
relations are addressed by small integer handles that stay stable for the
lifetime of one Graph, and incidence is kept in side tables. The package is
free of I/O and persistence concerns.

# Key Entities

  - Graph: the mutable multigraph owned by one document.
  - Node / Relation: graph elements carrying namespaced annotations.
  - Layer: named membership set scoping an annotation scheme.
  - SecondaryEdgeDescriptor / SignalDescriptor: typed records decoded from
    scratch annotations left behind by the upstream reader.
  - LifecycleHooks: callbacks fired around each rewriting pass.
*/
package domain
