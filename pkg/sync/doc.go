/*
The sync package implements mirrord's reconciliation engine. A pass makes the
replica tree an exact copy of the source tree.

A pass works on two snapshots, one per tree, that are re-derived from the
filesystem every time. Nothing is remembered between passes, so an
interrupted or partially failed pass is repaired by the next one.

A pass runs in a fixed order:
1) Replica directories absent from the source are removed recursively. Their
   contents are never deleted file by file.
2) Source directories absent from the replica are created, parents first.
3) Replica files absent from the source are removed.
4) Source files are copied into the replica if they are missing, or if the
   replica copy differs. Two copies differ if their sizes differ or, when the
   sizes match, if their content digests differ.

Every operation that touches the filesystem reports an Outcome. A failed
operation is reported as a warning and the pass carries on with the next
item.
*/
package sync
