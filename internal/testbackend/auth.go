package testbackend

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Kirill-j/bookinghub/internal/lib/password"
	"github.com/Kirill-j/bookinghub/internal/models"
)

func (s *Server) findByEmail(email string) *account {
	for _, acc := range s.users {
		if acc.Email == email {
			return acc
		}
	}
	return nil
}

func (s *Server) authResult(w http.ResponseWriter, r *http.Request, status int, u models.User) {
	token, err := s.tokens.Generate(u.ID, string(u.Role))
	if err != nil {
		http.Error(w, "Не удалось создать токен", http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, status, models.AuthResult{AccessToken: token, User: u})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Некорректный JSON", http.StatusBadRequest)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	switch {
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		http.Error(w, "Введите корректный email", http.StatusBadRequest)
		return
	case req.Name == "":
		http.Error(w, "Имя обязательно", http.StatusBadRequest)
		return
	case len(req.Password) < 6:
		http.Error(w, "Пароль должен быть не короче 6 символов", http.StatusBadRequest)
		return
	}

	role := models.RoleUser
	switch strings.ToUpper(strings.TrimSpace(req.AccountType)) {
	case "", "INDIVIDUAL":
	case "COMPANY":
		role = models.RoleManager
	default:
		http.Error(w, "Некорректный тип аккаунта (accountType)", http.StatusBadRequest)
		return
	}

	hash, err := password.Hash(req.Password, s.cost)
	if err != nil {
		http.Error(w, "Не удалось обработать пароль", http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	if s.findByEmail(req.Email) != nil {
		s.mu.Unlock()
		http.Error(w, "Пользователь с таким email уже существует", http.StatusConflict)
		return
	}
	acc := &account{
		User:         models.User{ID: s.id(), Name: req.Name, Email: req.Email, Role: role},
		passwordHash: hash,
		createdAt:    s.now(),
	}
	s.users[acc.ID] = acc
	s.mu.Unlock()

	s.authResult(w, r, http.StatusCreated, acc.User)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Некорректный JSON", http.StatusBadRequest)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email и пароль обязательны", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	var (
		user models.User
		hash string
	)
	if acc := s.findByEmail(req.Email); acc != nil {
		user, hash = acc.User, acc.passwordHash
	}
	s.mu.Unlock()
	if hash == "" || password.Compare(hash, req.Password) != nil {
		http.Error(w, "Неверный email или пароль", http.StatusUnauthorized)
		return
	}
	s.authResult(w, r, http.StatusOK, user)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	if s.failMe.Load() {
		http.Error(w, "Неверный токен", http.StatusUnauthorized)
		return
	}
	u, found := s.User(userIDFrom(r))
	if !found {
		http.Error(w, "Пользователь не найден", http.StatusUnauthorized)
		return
	}
	writeJSON(w, r, http.StatusOK, u)
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Некорректный JSON", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || !strings.Contains(req.Email, "@") {
		http.Error(w, "Имя и корректный email обязательны", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, found := s.users[userIDFrom(r)]
	if !found {
		http.Error(w, "Пользователь не найден", http.StatusNotFound)
		return
	}
	if other := s.findByEmail(req.Email); other != nil && other.ID != acc.ID {
		http.Error(w, "Пользователь с таким email уже существует", http.StatusConflict)
		return
	}
	acc.Name = req.Name
	acc.Email = req.Email
	ok(w, r)
}

func (s *Server) deleteMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uid := userIDFrom(r)
	if _, found := s.users[uid]; !found {
		http.Error(w, "Пользователь не найден", http.StatusNotFound)
		return
	}
	delete(s.users, uid)
	ok(w, r)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Некорректный JSON", http.StatusBadRequest)
		return
	}
	if len(req.NewPassword) < 6 {
		http.Error(w, "Пароль должен быть не короче 6 символов", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	acc, found := s.users[userIDFrom(r)]
	var current string
	if found {
		current = acc.passwordHash
	}
	s.mu.Unlock()
	if !found {
		http.Error(w, "Пользователь не найден", http.StatusNotFound)
		return
	}
	if password.Compare(current, req.CurrentPassword) != nil {
		http.Error(w, "Неверный текущий пароль", http.StatusBadRequest)
		return
	}
	hash, err := password.Hash(req.NewPassword, s.cost)
	if err != nil {
		http.Error(w, "Не удалось обработать пароль", http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	acc.passwordHash = hash
	s.mu.Unlock()
	ok(w, r)
}

func (s *Server) publicUser(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		http.Error(w, "Некорректный id", http.StatusBadRequest)
		return
	}
	u, found := s.User(id)
	if !found {
		http.Error(w, "Пользователь не найден", http.StatusNotFound)
		return
	}
	writeJSON(w, r, http.StatusOK, u)
}
