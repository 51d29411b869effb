package rimage

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// The serialized layout is two little-endian uint64 dimensions followed by
// width*height float32 depth values, row major. Files ending in .gz are
// gzip compressed.

// ParseDepthMap reads a depth map from a file, handling gzip by extension.
func ParseDepthMap(fn string) (*DepthMap, error) {
	//nolint:gosec
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	var in io.Reader = f
	if filepath.Ext(fn) == ".gz" {
		gin, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer goutils.UncheckedErrorFunc(gin.Close)
		in = gin
	}

	return ReadDepthMap(bufio.NewReader(in))
}

// ReadDepthMap decodes a serialized depth map.
func ReadDepthMap(r *bufio.Reader) (*DepthMap, error) {
	width, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	height, err := readUint64(r)
	if err != nil {
		return nil, err
	}

	if width == 0 || width >= 100000 || height == 0 || height >= 100000 {
		return nil, errors.Errorf("bad width or height for depth map %d %d", width, height)
	}

	dm := NewEmptyDepthMap(int(width), int(height))
	buf := make([]byte, 4)
	for i := range dm.data {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.Wrap(err, "depth map data truncated")
		}
		dm.data[i] = Depth(math.Float32frombits(binary.LittleEndian.Uint32(buf)))
	}

	return dm, nil
}

func readUint64(r io.Reader) (uint64, error) {
	buf := make([]byte, 8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, errors.Wrap(err, "depth map header truncated")
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// WriteTo serializes the depth map.
func (dm *DepthMap) WriteTo(out io.Writer) error {
	buf := make([]byte, 8)

	binary.LittleEndian.PutUint64(buf, uint64(dm.width))
	if _, err := out.Write(buf); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(buf, uint64(dm.height))
	if _, err := out.Write(buf); err != nil {
		return err
	}

	for _, z := range dm.data {
		binary.LittleEndian.PutUint32(buf[:4], math.Float32bits(float32(z)))
		if _, err := out.Write(buf[:4]); err != nil {
			return err
		}
	}
	return nil
}

// WriteToFile writes the depth map to a file, gzipping when the name ends
// in .gz.
func (dm *DepthMap) WriteToFile(fn string) error {
	//nolint:gosec
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	var gout *gzip.Writer
	var out io.Writer = f
	if filepath.Ext(fn) == ".gz" {
		gout = gzip.NewWriter(f)
		out = gout
	}

	bout := bufio.NewWriter(out)
	if err := dm.WriteTo(bout); err != nil {
		return err
	}
	if err := bout.Flush(); err != nil {
		return err
	}

	if gout != nil {
		if err := gout.Close(); err != nil {
			return err
		}
	}
	return f.Sync()
}
