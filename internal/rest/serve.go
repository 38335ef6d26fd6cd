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


package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	nl "github.com/mlnoga/edgelight/internal"
	"github.com/mlnoga/edgelight/internal/edge"
	"github.com/mlnoga/edgelight/internal/grid"
	"github.com/mlnoga/edgelight/internal/ops"
	_ "github.com/mlnoga/edgelight/internal/ops/edge" // register operators for JSON decoding
	"github.com/mlnoga/edgelight/internal/ops/filter"
	"github.com/mlnoga/edgelight/internal/overlay"
	"github.com/mlnoga/edgelight/internal/pad"
)


// Creates the router with all API endpoints
func NewRouter() *gin.Engine {
	r := gin.Default()
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET ("/ping",   getPing)
			v1.POST("/edges",  postEdges)
			v1.POST("/smooth", postSmooth)
			v1.POST("/run",    postRun)
		}
	}
	return r
}

// Listens and serves on the given address, e.g. ":8080"
func Serve(addr string) error {
	return NewRouter().Run(addr)
}

func getPing(c *gin.Context) {
	c.JSON(200, gin.H{
		"message": "pong",
	})
}

func printArgs(logWriter io.Writer, prefix, suffix string, args interface{}) error {
	m,err:=json.MarshalIndent(args, "", "  ")
	if err!=nil { return err }
	fmt.Fprintf(logWriter, "%s%s%s", prefix, string(m), suffix)
	return nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error() } )
}

// Converts request rows into a finite grid
func gridFromRows(rows [][]float64) (*grid.Grid, error) {
	g, err:=grid.NewFromRows(rows)
	if err!=nil { return nil, err }
	if err:=grid.CheckFinite(g); err!=nil { return nil, err }
	return g, nil
}


type postEdgesArgs struct {
	Grid      [][]float64 `json:"grid" binding:"required"`
	edge.Params
	Threshold *int        `json:"threshold"`   // optional, 0..255
}

func postEdges(c *gin.Context) {
	args:=postEdgesArgs{Params: edge.DefaultParams()}
	if err:=c.ShouldBindJSON(&args); err!=nil {
		badRequest(c, err)
		return
	}
	g, err:=gridFromRows(args.Grid)
	if err!=nil {
		badRequest(c, err)
		return
	}
	if args.Threshold!=nil && (*args.Threshold<0 || *args.Threshold>255) {
		badRequest(c, fmt.Errorf("%w: threshold %d must be within 0..255", grid.ErrInvalidArgument, *args.Threshold))
		return
	}

	edges, err:=edge.Detect(g, args.Params)
	if err!=nil {
		badRequest(c, err)
		return
	}
	res:=gin.H{"edges": edges.Rows()}

	if args.Threshold!=nil {
		bin, err:=overlay.Binarize(edges, float64(*args.Threshold))
		if err!=nil {
			badRequest(c, err)
			return
		}
		res["binary"]=bin.Rows()
	}
	c.JSON(http.StatusOK, res)
}


type postSmoothArgs struct {
	Grid    [][]float64 `json:"grid" binding:"required"`
	Filter  string      `json:"filter"`
	Size    int         `json:"size"`
	Sigma   float64     `json:"sigma"`
	Padding pad.Policy  `json:"padding"`
}

func postSmooth(c *gin.Context) {
	def:=filter.NewOpSmoothDefault()
	args:=postSmoothArgs{Filter: def.Filter, Size: def.Size, Sigma: def.Sigma, Padding: def.Padding}
	if err:=c.ShouldBindJSON(&args); err!=nil {
		badRequest(c, err)
		return
	}
	g, err:=gridFromRows(args.Grid)
	if err!=nil {
		badRequest(c, err)
		return
	}

	op:=filter.NewOpSmooth(args.Filter, args.Size, args.Sigma, args.Padding)
	res, err:=op.Filtered(g)
	if err!=nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res.Rows()})
}


type postRunArgs struct {
	FilePatterns []string         `json:"filePatterns" binding:"required"`
	Pipeline     *ops.OpSequence  `json:"pipeline"     binding:"required"`
}

// Runs a pipeline on all matching files, streaming the log as plain text
func postRun(c *gin.Context) {
	logWriter := c.Writer
	var args postRunArgs
	if err:=c.ShouldBindJSON(&args); err!=nil {
		badRequest(c, err)
		return
	}

	header := logWriter.Header()
	header.Set("Content-Type", "text/plain")
	logWriter.WriteHeader(http.StatusOK)

	if err:=printArgs(logWriter, "Arguments:\n", "\n", args); err!=nil {
		fmt.Fprintf(logWriter, "Error printing arguments: %s\n", err.Error())
		return
	}

	ctx:=ops.NewContext(nl.NewSyncWriter(logWriter))
	seq:=ops.NewOpSequence(ops.NewOpLoadMany(args.FilePatterns), args.Pipeline)
	promises, err:=seq.MakePromises(nil, ctx)
	if err==nil {
		_, err=ops.MaterializeAll(promises, ctx.MaxThreads, true)
	}
	if err!=nil {
		fmt.Fprintf(logWriter, "error: %s\n", err.Error())
	} else {
		fmt.Fprintf(logWriter, "done\n")
	}
	logWriter.Flush()
}
