// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.


// Package imageio reads images and CSV matrices into grids, and writes grids and overlays back.
package imageio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/mlnoga/edgelight/internal/grid"
	"github.com/mlnoga/edgelight/internal/overlay"
)

// Default limit for the longest image edge. Larger images are downscaled on load
const DefaultMaxEdge=1024

// Quality for JPEG output
const JPEGQuality=95

var imageSuffixes=map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".tif": true, ".tiff": true,
}

// Returns true if the file name has a suffix this package can read
func IsSupported(fileName string) bool {
	ext:=strings.ToLower(filepath.Ext(fileName))
	return imageSuffixes[ext] || ext==".csv"
}


// Reads an image or CSV file into a grid with values in [0,255].
// Images are converted to grayscale and downscaled so the longest edge is at most maxEdge,
// unless maxEdge is 0
func ReadFile(fileName string, maxEdge int) (*grid.Grid, error) {
	ext:=strings.ToLower(filepath.Ext(fileName))
	if !imageSuffixes[ext] && ext!=".csv" {
		return nil, fmt.Errorf("%w: unsupported file type '%s'", grid.ErrInvalidArgument, ext)
	}

	file, err:=os.Open(fileName)
	if err!=nil { return nil, err }
	defer file.Close()
	reader:=bufio.NewReader(file)

	if ext==".csv" { return ReadCSV(reader) }
	return ReadImage(reader, maxEdge)
}

// Decodes an image of any registered format into a grayscale grid, downscaling it so the
// longest edge is at most maxEdge unless maxEdge is 0
func ReadImage(r io.Reader, maxEdge int) (*grid.Grid, error) {
	if maxEdge<0 {
		return nil, fmt.Errorf("%w: negative maximum edge %d", grid.ErrInvalidArgument, maxEdge)
	}
	img, _, err:=image.Decode(r)
	if err!=nil { return nil, err }

	gray:=toGray(img)
	if maxEdge>0 { gray=downscale(gray, maxEdge) }

	b:=gray.Bounds()
	g, err:=grid.New(b.Dy(), b.Dx())
	if err!=nil { return nil, err }
	for y:=0; y<g.Height; y++ {
		row:=g.Row(y)
		pix:=gray.Pix[y*gray.Stride : y*gray.Stride+g.Width]
		for x, p:=range pix {
			row[x]=float64(p)
		}
	}
	return g, nil
}

// Converts any image to 8-bit grayscale with origin (0,0)
func toGray(img image.Image) *image.Gray {
	b:=img.Bounds()
	gray:=image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y:=b.Min.Y; y<b.Max.Y; y++ {
		for x:=b.Min.X; x<b.Max.X; x++ {
			gray.SetGray(x-b.Min.X, y-b.Min.Y, color.GrayModel.Convert(img.At(x, y)).(color.Gray))
		}
	}
	return gray
}

// Scales the image down bilinearly if its longest edge exceeds maxEdge
func downscale(img *image.Gray, maxEdge int) *image.Gray {
	b:=img.Bounds()
	longest:=b.Dx()
	if b.Dy()>longest { longest=b.Dy() }
	if longest<=maxEdge { return img }

	ratio:=float64(maxEdge)/float64(longest)
	w, h:=int(float64(b.Dx())*ratio), int(float64(b.Dy())*ratio)
	if w<1 { w=1 }
	if h<1 { h=1 }
	dst:=image.NewGray(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}


// Reads a comma-separated numeric matrix. If its maximum is at most 1, values are scaled
// by 255. Values are then clipped to [0,255]
func ReadCSV(r io.Reader) (*grid.Grid, error) {
	cr:=csv.NewReader(r)
	cr.Comment='#'
	cr.TrimLeadingSpace=true
	records, err:=cr.ReadAll()
	if err!=nil {
		if errors.Is(err, csv.ErrFieldCount) {
			return nil, fmt.Errorf("%w: csv rows differ in length: %s", grid.ErrInvalidArgument, err)
		}
		return nil, err
	}

	rows:=make([][]float64, len(records))
	for y, rec:=range records {
		rows[y]=make([]float64, len(rec))
		for x, field:=range rec {
			v, err:=strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err!=nil {
				return nil, fmt.Errorf("%w: csv row %d column %d: %s", grid.ErrInvalidArgument, y+1, x+1, err)
			}
			rows[y][x]=v
		}
	}
	g, err:=grid.NewFromRows(rows)
	if err!=nil { return nil, err }
	if err:=grid.CheckFinite(g); err!=nil { return nil, err }

	_, max:=g.MinMax()
	scale:=1.0
	if max<=1 { scale=255 }
	for i, d:=range g.Data {
		g.Data[i]=math.Min(math.Max(d*scale, 0), 255)
	}
	return g, nil
}


// Writes a grid to file, choosing the format by suffix: PNG, JPEG, TIFF or CSV.
// Image formats are quantized to 8 bits
func WriteFile(fileName string, g *grid.Grid) error {
	if err:=grid.Check(g); err!=nil { return err }
	ext:=strings.ToLower(filepath.Ext(fileName))
	if !isWritable(ext) && ext!=".csv" {
		return fmt.Errorf("%w: cannot write file type '%s'", grid.ErrInvalidArgument, ext)
	}

	file, err:=os.Create(fileName)
	if err!=nil { return err }
	defer file.Close()

	writer:=bufio.NewWriter(file)
	if ext==".csv" {
		err=WriteCSV(writer, g)
	} else {
		err=encode(writer, ext, g.Image())
	}
	if err!=nil { return err }
	if err:=writer.Flush(); err!=nil { return err }
	return file.Close()
}

// Writes an overlay image to file, choosing the format by suffix: PNG, JPEG or TIFF
func WriteRGBFile(fileName string, rgb *overlay.RGB) error {
	ext:=strings.ToLower(filepath.Ext(fileName))
	if !isWritable(ext) {
		return fmt.Errorf("%w: cannot write RGB file type '%s'", grid.ErrInvalidArgument, ext)
	}

	file, err:=os.Create(fileName)
	if err!=nil { return err }
	defer file.Close()

	writer:=bufio.NewWriter(file)
	if err:=encode(writer, ext, rgb.Image()); err!=nil { return err }
	if err:=writer.Flush(); err!=nil { return err }
	return file.Close()
}

func isWritable(ext string) bool {
	switch ext {
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff": return true
	}
	return false
}

func encode(w io.Writer, ext string, img image.Image) error {
	switch ext {
	case ".png":
		return png.Encode(w, img)
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	default:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
}

// Writes the grid as comma-separated values with four decimals
func WriteCSV(w io.Writer, g *grid.Grid) error {
	cw:=csv.NewWriter(w)
	rec:=make([]string, g.Width)
	for y:=0; y<g.Height; y++ {
		for x, d:=range g.Row(y) {
			rec[x]=strconv.FormatFloat(d, 'f', 4, 64)
		}
		if err:=cw.Write(rec); err!=nil { return err }
	}
	cw.Flush()
	return cw.Error()
}
