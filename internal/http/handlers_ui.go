package http

import (
	"errors"
	"io"
	"net/http"

	"savings/internal/app"
	"savings/internal/core"
	"savings/internal/log"
)

// multipartOverhead is the allowance for boundaries and part headers on top
// of the image itself.
const multipartOverhead = 64 << 10

// handleOpenModal opens one of the modal flows. Every flow except create
// takes the target goal in the "id" field.
func (s *Server) handleOpenModal(kind app.ActionType) http.HandlerFunc {
	open := map[app.ActionType]func(int) error{
		app.ActionEdit:                s.ctrl.OpenEdit,
		app.ActionDelete:              s.ctrl.OpenDelete,
		app.ActionAddMoney:            s.ctrl.OpenDeposit,
		app.ActionCustomizeBackground: s.ctrl.OpenBackground,
	}[kind]

	return func(w http.ResponseWriter, r *http.Request) {
		if resp := RequirePOST(r); resp != nil {
			resp.Write(w)
			return
		}
		if kind == app.ActionCreate {
			s.ctrl.OpenCreate()
			s.writeApp(w, r, NewHTMXResponse())
			return
		}

		p, resp := ParseBodyOrFail(r)
		if resp != nil {
			resp.Write(w)
			return
		}
		id, err := p.GoalID()
		if err == nil {
			err = open(id)
		}
		if err != nil {
			s.writeError(w, r, string(kind), err)
			return
		}
		s.writeApp(w, r, NewHTMXResponse())
	}
}

func (s *Server) handleCloseModal(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	s.ctrl.CloseAll()
	s.writeApp(w, r, NewHTMXResponse())
}

func (s *Server) handleToggleMenu(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	p, resp := ParseBodyOrFail(r)
	if resp != nil {
		resp.Write(w)
		return
	}
	id, err := p.GoalID()
	if err == nil {
		err = s.ctrl.ToggleMenu(id)
	}
	if err != nil {
		s.writeError(w, r, "menu", err)
		return
	}
	s.writeApp(w, r, NewHTMXResponse())
}

func (s *Server) handleCloseMenu(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	s.ctrl.CloseMenu()
	s.writeApp(w, r, NewHTMXResponse())
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	p, resp := ParseBodyOrFail(r)
	if resp != nil {
		resp.Write(w)
		return
	}
	category := p.Get("category")
	if category == "" {
		category = core.FilterAll
	}
	if err := s.ctrl.SetFilter(r.Context(), category); err != nil {
		s.writeError(w, r, "filter", err)
		return
	}
	s.writeApp(w, r, NewHTMXResponse())
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	p, resp := ParseBodyOrFail(r)
	if resp != nil {
		resp.Write(w)
		return
	}
	if err := s.ctrl.SetSort(r.Context(), p.Get("sortBy")); err != nil {
		s.writeError(w, r, "sort", err)
		return
	}
	s.writeApp(w, r, NewHTMXResponse())
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	theme := s.ctrl.ToggleTheme(r.Context())
	s.writeApp(w, r, NewHTMXResponse().TriggerThemeChanged(string(theme)))
}

func (s *Server) handleSelectColor(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	p, resp := ParseBodyOrFail(r)
	if resp != nil {
		resp.Write(w)
		return
	}
	if err := s.ctrl.SelectColor(p.Get("color")); err != nil {
		s.writeError(w, r, log.OpBackground, err)
		return
	}
	s.writeApp(w, r, NewHTMXResponse())
}

func (s *Server) handleSwitchTab(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	p, resp := ParseBodyOrFail(r)
	if resp != nil {
		resp.Write(w)
		return
	}
	if err := s.ctrl.SwitchTab(p.Get("tab")); err != nil {
		s.writeError(w, r, log.OpBackground, err)
		return
	}
	s.writeApp(w, r, NewHTMXResponse())
}

func (s *Server) handleRemoveImage(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if err := s.ctrl.RemoveImage(); err != nil {
		s.writeError(w, r, log.OpBackground, err)
		return
	}
	s.writeApp(w, r, NewHTMXResponse())
}

// handleUploadImage streams the "image" part of a multipart form into the
// customizer. Size and type are enforced by the controller.
func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		s.writeError(w, r, log.OpUpload, core.Invalid("Please select an image file (JPG, PNG, etc.)", err))
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.writeError(w, r, log.OpUpload, errors.Join(app.ErrImageRead, err))
			return
		}
		if part.FormName() != "image" || part.FileName() == "" {
			_ = part.Close()
			continue
		}

		err = s.ctrl.IngestImage(r.Context(), app.ImageUpload{
			Filename:    part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Body:        part,
		})
		_ = part.Close()
		if err != nil {
			s.writeError(w, r, log.OpUpload, err)
			return
		}
		s.appMetrics.uploads.Add(1)
		s.writeApp(w, r, NewHTMXResponse())
		return
	}

	s.writeError(w, r, log.OpUpload, core.Invalid("Please select an image file (JPG, PNG, etc.)", nil))
}
