package imaging

// Rect is an axis aligned pixel rectangle.
type Rect struct {
	X, Y, W, H int
}

// Blocks partitions a rows x cols image into size x size tiles, row by row.
// Tiles on the right and bottom edges are truncated.
func Blocks(rows, cols, size int) []Rect {
	if size <= 0 {
		return nil
	}
	var out []Rect
	for y := 0; y < rows; y += size {
		h := min(size, rows-y)
		for x := 0; x < cols; x += size {
			w := min(size, cols-x)
			out = append(out, Rect{X: x, Y: y, W: w, H: h})
		}
	}
	return out
}

// FullBlocks is Blocks without the truncated edge tiles.
func FullBlocks(rows, cols, size int) []Rect {
	var out []Rect
	for _, rc := range Blocks(rows, cols, size) {
		if rc.W == size && rc.H == size {
			out = append(out, rc)
		}
	}
	return out
}

// SlantedGeometry describes the overlapping block walk used by measures that
// sample a rotated window around each block.
type SlantedGeometry struct {
	BlockSize int
	// Window is the size of the oriented sampling window, long side first.
	WindowX, WindowY int
	// Offset is the border added on each side so the rotated window fits.
	Offset int
}

// NewSlantedGeometry derives the border from the window diagonal.
func NewSlantedGeometry(blockSize int) SlantedGeometry {
	wx, wy := blockSize, blockSize/2
	ext := ceilSqrt(wx*wx + wy*wy)
	diff := ext - blockSize
	return SlantedGeometry{
		BlockSize: blockSize,
		WindowX:   wx,
		WindowY:   wy,
		Offset:    (diff + 1) / 2,
	}
}

// SlantedBlock is one position of the walk. Block is the inner tile, Window
// the tile extended by the offset on every side (clipped to the image).
type SlantedBlock struct {
	Row, Col int
	Block    Rect
	Window   Rect
}

// Walk visits the inner blocks of a rows x cols image, leaving an Offset
// border, and returns the map dimensions alongside the positions.
func (g SlantedGeometry) Walk(rows, cols int) (mapRows, mapCols int, blocks []SlantedBlock) {
	bs, off := g.BlockSize, g.Offset
	br := 0
	for r := off; r < rows-(bs+off-1); r += bs {
		bc := 0
		for c := off; c < cols-(bs+off-1); c += bs {
			block := Rect{X: c, Y: r, W: min(bs, cols-c), H: min(bs, rows-r)}
			wy1 := min(r+bs+off, rows)
			wx1 := min(c+bs+off, cols)
			window := Rect{X: c - off, Y: r - off, W: wx1 - (c - off), H: wy1 - (r - off)}
			blocks = append(blocks, SlantedBlock{Row: br, Col: bc, Block: block, Window: window})
			bc++
		}
		if bc > mapCols {
			mapCols = bc
		}
		br++
	}
	return br, mapCols, blocks
}

func ceilSqrt(n int) int {
	r := 0
	for r*r < n {
		r++
	}
	return r
}
