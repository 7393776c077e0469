package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/piwi3910/marcenapp/internal/engine"
	"github.com/piwi3910/marcenapp/internal/export"
	"github.com/piwi3910/marcenapp/internal/gcode"
	"github.com/piwi3910/marcenapp/internal/importer"
	"github.com/piwi3910/marcenapp/internal/model"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readPartList decodes a schema-checked part list body and overlays its
// settings on the configured defaults.
func (s *Server) readPartList(c *gin.Context) (importer.PartList, model.NestingSettings, error) {
	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		return importer.PartList{}, model.NestingSettings{}, fmt.Errorf("reading body: %w", err)
	}
	pl, err := importer.DecodePartList(data)
	if err != nil {
		return importer.PartList{}, model.NestingSettings{}, err
	}
	return pl, pl.Apply(s.cfg.NestingSettings()), nil
}

func (s *Server) handleNesting(c *gin.Context) {
	pl, settings, err := s.readPartList(c)
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := s.nest(pl.Parts, settings)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleCompare(c *gin.Context) {
	pl, settings, err := s.readPartList(c)
	if err != nil {
		writeError(c, err)
		return
	}
	results, err := engine.CompareScenarios(c.Request.Context(), engine.BuildDefaultScenarios(settings), pl.Parts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scenarios": results})
}

func (s *Server) handleEstimate(c *gin.Context) {
	pl, settings, err := s.readPartList(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"purchase":      model.EstimateByMaterial(pl.Parts, settings, s.cfg.WastePercent),
		"edge_banding":  model.CalculateEdgeBanding(pl.Parts, s.cfg.WastePercent),
		"edge_per_part": model.CalculatePerPartEdgeBanding(pl.Parts),
	})
}

type exportFormat struct {
	contentType string
	ext         string
	write       func(w io.Writer, r model.NestingResult, settings model.NestingSettings) error
}

func (s *Server) exportFormats() map[string]exportFormat {
	machine := gcode.SettingsFromConfig(s.cfg)
	return map[string]exportFormat{
		"pdf": {"application/pdf", "pdf", export.WritePDF},
		"labels": {"application/pdf", "pdf", func(w io.Writer, r model.NestingResult, _ model.NestingSettings) error {
			return export.WriteLabels(w, r)
		}},
		"csv": {"text/csv", "csv", func(w io.Writer, r model.NestingResult, _ model.NestingSettings) error {
			return export.WriteCutListCSV(w, r)
		}},
		"xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx", export.WriteExcel},
		"dxf": {"application/dxf", "dxf", func(w io.Writer, r model.NestingResult, _ model.NestingSettings) error {
			return export.WriteDXF(w, r)
		}},
		"html": {"text/html; charset=utf-8", "html", func(w io.Writer, r model.NestingResult, _ model.NestingSettings) error {
			return export.WriteChart(w, r)
		}},
		"gcode": {"text/plain; charset=utf-8", "nc", func(w io.Writer, r model.NestingResult, _ model.NestingSettings) error {
			return export.WriteGCode(w, r, machine)
		}},
	}
}

func (s *Server) handleExport(c *gin.Context) {
	name := c.Param("format")
	format, ok := s.exportFormats()[name]
	if !ok {
		writeError(c, fmt.Errorf("%w: %s", errUnknownFormat, name))
		return
	}

	pl, settings, err := s.readPartList(c)
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := s.nest(pl.Parts, settings)
	if err != nil {
		writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := format.write(&buf, result, settings); err != nil {
		writeError(c, fmt.Errorf("exporting %s: %w", name, err))
		return
	}
	filename := "nesting"
	if pl.Name != "" {
		filename = pl.Name
	}
	if name == "labels" {
		filename += "-labels"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+"."+format.ext))
	c.Data(http.StatusOK, format.contentType, buf.Bytes())
}
