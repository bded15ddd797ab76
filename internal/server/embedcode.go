package server

import (
	"errors"
	"net/http"
	"strings"

	embedcode "remila_sections/internal/embed"
)

type embedCodeRequest struct {
	Mode   embedcode.Mode   `json:"mode"`
	Config embedcode.Config `json:"config"`
}

type embedCodeResponse struct {
	Code string `json:"code"`
}

// embedCode serves POST /api/v1/embed-code for the admin snippet builder.
func (s *Server) embedCode(w http.ResponseWriter, r *http.Request) {
	var req embedCodeRequest
	if err := ParseJSONBody(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	code, err := s.generator.Generate(req.Mode, req.Config)
	if err != nil {
		var vErr *embedcode.ValidationError
		switch {
		case errors.As(err, &vErr):
			ErrorsResponse(w, http.StatusBadRequest, vErr.Messages)
		case errors.Is(err, embedcode.ErrUnknownMode):
			ErrorsResponse(w, http.StatusBadRequest, []string{"mode must be one of: " + modeList()})
		default:
			s.logger.Error("generate embed code", "error", err)
			ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	JSONResponse(w, http.StatusOK, embedCodeResponse{Code: code})
}

func modeList() string {
	names := make([]string, 0, 4)
	for _, m := range embedcode.Modes() {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}
