package httpapi

import "net/http"

type registerRequest struct {
	Username string `json:"username" validate:"max=64"`
	Email    string `json:"email" validate:"max=254"`
	Password string `json:"password" validate:"max=72"`
}

type loginRequest struct {
	Username string `json:"username" validate:"max=254"`
	Password string `json:"password" validate:"max=72"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeAuthError(w, r, err)
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.writeAuthError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "user registered", "user_id", user.ID, "username", user.UserName)
	writeJSON(w, http.StatusCreated, envelope{"success": true, "message": "Registration successful!"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeAuthError(w, r, err)
		return
	}

	res, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeAuthError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success":  true,
		"token":    res.Token,
		"username": res.User.UserName,
		"user": envelope{
			"id":       res.User.ID,
			"username": res.User.UserName,
			"email":    res.User.Email,
		},
	})
}
