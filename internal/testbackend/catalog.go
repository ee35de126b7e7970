package testbackend

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/Kirill-j/bookinghub/internal/models"
)

func sortedKeys[V any](m map[uint64]V) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	var items []models.Category
	for _, id := range sortedKeys(s.categories) {
		items = append(items, *s.categories[id])
	}
	s.mu.Unlock()
	writeJSON(w, r, http.StatusOK, items)
}

func decodeName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req models.CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Некорректный JSON", http.StatusBadRequest)
		return "", false
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		http.Error(w, "name обязателен", http.StatusBadRequest)
		return "", false
	}
	return name, true
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	name, valid := decodeName(w, r)
	if !valid {
		return
	}
	id := s.AddCategory(name)
	writeJSON(w, r, http.StatusCreated, models.Created{ID: id})
}

func (s *Server) renameCategory(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		http.Error(w, "Некорректный id", http.StatusBadRequest)
		return
	}
	name, valid := decodeName(w, r)
	if !valid {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, found := s.categories[id]
	if !found {
		http.Error(w, "Категория не найдена", http.StatusNotFound)
		return
	}
	c.Name = name
	ok(w, r)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		http.Error(w, "Некорректный id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, res := range s.resources {
		if res.CategoryID == id {
			http.Error(w, "Не удалось удалить категорию: к ней привязаны объявления", http.StatusBadRequest)
			return
		}
	}
	delete(s.categories, id)
	ok(w, r)
}

func (s *Server) listResources(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	var items []models.Resource
	for _, id := range sortedKeys(s.resources) {
		items = append(items, *s.resources[id])
	}
	s.mu.Unlock()
	writeJSON(w, r, http.StatusOK, items)
}

func (s *Server) myResources(w http.ResponseWriter, r *http.Request) {
	owner := userIDFrom(r)

	s.mu.Lock()
	var items []models.Resource
	for _, id := range sortedKeys(s.resources) {
		if res := s.resources[id]; res.OwnerUserID == owner {
			items = append(items, *res)
		}
	}
	s.mu.Unlock()
	writeJSON(w, r, http.StatusOK, items)
}

func (s *Server) createResource(w http.ResponseWriter, r *http.Request) {
	var req models.CreateResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	switch {
	case req.CategoryID == 0:
		http.Error(w, "categoryId is required", http.StatusBadRequest)
		return
	case req.Title == "":
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	case req.PricePerHour < 0:
		http.Error(w, "pricePerHour must be >= 0", http.StatusBadRequest)
		return
	}

	id := s.AddResource(models.Resource{
		CategoryID:   req.CategoryID,
		OwnerUserID:  userIDFrom(r),
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		PricePerHour: req.PricePerHour,
		IsActive:     true,
	})
	writeJSON(w, r, http.StatusCreated, models.Created{ID: id})
}
