/*
Package hashring implements a static consistent hashing ring.

In general, consistent hashing is all about mapping of object from a very big
set of values (e.g. request id) to object from a quite small set (e.g. server
address). The word "consistent" means that it can produce consistent mapping
on different machines or processes without additional state exchange and
communication.

For more theory about the subject please see this great document:
https://theory.stanford.edu/~tim/s16/l/l1.pdf

Unlike rings that rebalance while nodes come and go, this ring is built once
from a fixed node list and never changes afterwards. Every node is placed on
the ring many times ("virtual nodes") and all placements are kept in two
parallel tables sorted by hash value, so a lookup is an interpolation search
over a plain slice followed by a forward walk collecting distinct nodes.
Reads touch no shared mutable state and need no locking.

When membership changes, the caller builds a fresh ring and swaps the
reference. Only the virtual slots owned by the added or removed node change
owners between the two rings, which is the usual minimal disruption argument
of consistent hashing.
*/
package hashring
