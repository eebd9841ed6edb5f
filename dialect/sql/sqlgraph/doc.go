// Package sqlgraph stores the graph in a relational database through a
// dialect.Driver. The Store implements graph.Reader for the serializer and
// persist.Sink for imports, and maps constraint violations raised by the
// postgres, mysql and sqlite drivers to *graphbundle.IntegrityError.
package sqlgraph
