package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/escolaplus/importer/internal/importer"
	"github.com/escolaplus/importer/internal/source"
)

// handleCreateBatch accepts a multipart upload (field "file"), parses it
// into headers + rows, and starts a batch. Optional form fields:
// "mode" (strict|permissive) and "mapping" (JSON field→header overrides).
func (s *Server) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		respondError(w, r, fmt.Errorf("file too large or invalid form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, fmt.Errorf("no file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, fmt.Errorf("read file: %w", err))
		return
	}

	sheet, err := source.Parse(header.Filename, data)
	if err != nil {
		respondError(w, r, err)
		return
	}

	mode := importer.Mode(s.cfg.Import.Mode)
	if v := r.FormValue("mode"); v != "" {
		mode, err = importer.ParseMode(v)
		if err != nil {
			respondError(w, r, err)
			return
		}
	}

	var overrides importer.FieldMapping
	if v := r.FormValue("mapping"); v != "" {
		if err := json.Unmarshal([]byte(v), &overrides); err != nil {
			respondError(w, r, fmt.Errorf("invalid mapping format"))
			return
		}
	}

	view, err := s.service.CreateBatch(sheet.Headers, sheet.Rows, mode, overrides)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Batch(chi.URLParam(r, "batchID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSetMapping(w http.ResponseWriter, r *http.Request) {
	var overrides importer.FieldMapping
	if err := decodeJSON(w, r, &overrides); err != nil {
		respondError(w, r, fmt.Errorf("invalid mapping body: %w", err))
		return
	}

	view, err := s.service.SetMapping(chi.URLParam(r, "batchID"), overrides)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Preview(r.Context(), chi.URLParam(r, "batchID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleEditRow(w http.ResponseWriter, r *http.Request) {
	rowIndex, err := rowIndexParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var body struct {
		Field importer.Field `json:"field"`
		Value string         `json:"value"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, r, fmt.Errorf("invalid edit body: %w", err))
		return
	}

	rec, err := s.service.EditCell(chi.URLParam(r, "batchID"), rowIndex, body.Field, body.Value)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleContractFlag(w http.ResponseWriter, r *http.Request) {
	rowIndex, err := rowIndexParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var body struct {
		Delivered bool `json:"delivered"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, r, fmt.Errorf("invalid body: %w", err))
		return
	}

	rec, err := s.service.SetContractDelivered(chi.URLParam(r, "batchID"), rowIndex, body.Delivered)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.Commit(r.Context(), chi.URLParam(r, "batchID"))
	if err != nil && summary == nil {
		respondError(w, r, err)
		return
	}
	if err != nil {
		// The run was interrupted mid-loop; the partial summary says which
		// rows made it, and the interrupted field says the rest never ran.
		writeJSON(w, http.StatusOK, struct {
			*importer.CommitSummary
			Interrupted string `json:"interrupted"`
		}{summary, err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.Summary(chi.URLParam(r, "batchID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Discard(chi.URLParam(r, "batchID")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTemplate serves the example CSV operators start from.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	const template = "Nome,CPF,Data de Nascimento,Telefone,Email,Endereço,Bairro,Cidade,CEP,Responsável,CPF Responsável,Telefone Responsável,Turma,Observações\n" +
		"João da Silva,111.444.777-35,15/05/2006,(92) 98765-4321,joao@email.com,Rua das Flores 123,Centro,Manaus,69000-000,Maria da Silva,390.533.447-05,(92) 98765-4320,Turma A,\n" +
		"Maria Santos,987.654.321-00,2005-08-20,(92) 91234-5678,maria@email.com,Av. Eduardo Ribeiro 456,Adrianópolis,Manaus,69057-000,,,,Bolsista\n"

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="modelo_importacao_alunos.csv"`)
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	_, _ = w.Write([]byte(template))
}

func rowIndexParam(r *http.Request) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, "rowIndex"))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid row index %q", chi.URLParam(r, "rowIndex"))
	}
	return n, nil
}
