package server

import (
	"errors"

	"github.com/superstar306/dexmate-robot/internal/usecase"
)

type Meta struct {
	Total int `json:"total"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

type Res struct {
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// httpStatus maps the engine's failure kinds to status codes. The
// taxonomy itself lives in usecase; this is the only place codes are
// chosen.
func httpStatus(err error) int {
	switch {
	case errors.As(err, &usecase.ErrNotFound{}):
		return 404
	case errors.As(err, &usecase.ErrForbidden{}):
		return 403
	case errors.As(err, &usecase.ErrConflict{}):
		return 409
	case errors.As(err, &usecase.ErrInvalidOperation{}):
		return 422
	}
	return 500
}
