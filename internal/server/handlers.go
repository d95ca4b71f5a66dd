package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/scrypster/kaosdraw/internal/evaluate"
	"github.com/scrypster/kaosdraw/internal/logic"
	"github.com/scrypster/kaosdraw/internal/workspace"
)

// maxEvaluateBody bounds the size of an evaluation request.
const maxEvaluateBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type validationResponse struct {
	Model      string            `json:"model"`
	Valid      bool              `json:"valid"`
	Violations []violationRecord `json:"violations"`
}

type violationRecord struct {
	Reference  string `json:"reference"`
	Identifier string `json:"identifier,omitempty"`
	Message    string `json:"message"`
}

type evaluateRequest struct {
	Values map[string]any `json:"values"`
	Reset  bool           `json:"reset"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func writeXML(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	var data []byte
	err := s.source.View(func(ws *workspace.Workspace) error {
		var err error
		data, err = ws.KAOSXML()
		return err
	})
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeXML(w, data)
}

func (s *Server) handleValidation(w http.ResponseWriter, r *http.Request) {
	resp := validationResponse{Violations: []violationRecord{}}
	_ = s.source.View(func(ws *workspace.Workspace) error {
		m := ws.Model()
		resp.Model = m.Identifier
		for _, v := range ws.Validate() {
			rec := violationRecord{Reference: v.Reference, Message: v.Message}
			if item := m.Lookup(v.Reference); item != nil {
				rec.Identifier = item.Identifier
			} else if v.Reference == m.Reference {
				rec.Identifier = m.Identifier
			}
			resp.Violations = append(resp.Violations, rec)
		}
		return nil
	})
	resp.Valid = len(resp.Violations) == 0
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogic(w http.ResponseWriter, r *http.Request) {
	var roots []logic.RootLogic
	err := s.source.View(func(ws *workspace.Workspace) error {
		var err error
		roots, err = ws.Logic()
		return err
	})
	if err != nil {
		s.logicError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, logic.Text(roots)+"\n")
}

func (s *Server) handleLogicXML(w http.ResponseWriter, r *http.Request) {
	var data []byte
	err := s.source.View(func(ws *workspace.Workspace) error {
		var err error
		data, err = ws.LogicXML()
		return err
	})
	if err != nil {
		s.logicError(w, err)
		return
	}
	writeXML(w, data)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEvaluateBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body: "+err.Error())
		return
	}
	if reset, err := strconv.ParseBool(r.URL.Query().Get("reset")); err == nil && reset {
		req.Reset = true
	}

	result, err := s.source.Evaluate(req.Values, req.Reset)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, result)
	case errors.Is(err, ErrNoLogic):
		writeError(w, http.StatusConflict, "NO_LOGIC", err.Error())
	case errors.Is(err, evaluate.ErrMissingParameters),
		errors.Is(err, evaluate.ErrOperandType):
		writeError(w, http.StatusBadRequest, "BAD_STATE", err.Error())
	case errors.Is(err, evaluate.ErrUnknownOperation),
		errors.Is(err, evaluate.ErrArity),
		errors.Is(err, evaluate.ErrEmptyConditional):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_MODEL", err.Error())
	default:
		s.logicError(w, err)
	}
}

func (s *Server) logicError(w http.ResponseWriter, err error) {
	if errors.Is(err, logic.ErrCycle) || errors.Is(err, logic.ErrBoundsExceeded) {
		writeError(w, http.StatusUnprocessableEntity, "INVALID_MODEL", err.Error())
		return
	}
	s.internalError(w, err)
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error().Err(err).Msg("Server: request failed")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}
