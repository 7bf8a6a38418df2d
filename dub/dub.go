/*
Package dub implements the DUB encoder used to compress tile index data
for the Sifteo Cube.

An image is a width by height grid of 16-bit tile indices, repeated for
each frame of an animation. The encoder splits every frame into 8 by 8
blocks, clipped at the right and bottom edges, compresses each block
independently, deduplicates blocks that encode to identical words, and
prefixes the result with a relocation index holding one block-data offset
per block. Index entries are packed as bytes when every relocated offset
fits in one, and as 16-bit words otherwise.

Within a block, each tile becomes one of three codes: DELTA, the signed
difference from the previous tile; REF, a backward distance to an
identical tile seen earlier in the block; or REPEAT, a run length that
follows any two consecutive identical codes. Code values are
variable-length integers packed in 3-bit groups, so small deltas and near
references stay short. The dictionary resets at every block boundary,
which keeps any block decodable from its index entry alone.
*/
package dub

const (
	// Tiles per block side. Blocks are encoded, indexed and
	// deduplicated independently.
	blockSize = 8

	// Group width for variable-length integers.
	chunkBits = 3
)
