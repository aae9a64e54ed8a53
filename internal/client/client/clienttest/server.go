// Package clienttest provides an in-memory stand-in for the Pennywise REST
// backend. It speaks the same JSON shapes (naive ISO timestamps, numeric
// money, FastAPI-style {"detail": ...} errors) and adds fault injection so
// tests can fail, delay or hold individual routes.
package clienttest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const tsLayout = "2006-01-02T15:04:05.000000"

type user struct {
	id        int64
	username  string
	hash      []byte
	fullName  string
	email     string
	phone     string
	createdAt time.Time
	budget    *decimal.Decimal
	expenses  []expense
	items     []item
}

type expense struct {
	id        int64
	name      string
	quantity  string
	price     decimal.Decimal
	timestamp time.Time
}

type item struct {
	id       int64
	name     string
	quantity string
}

// Server is a fake backend bound to an httptest.Server.
type Server struct {
	URL string

	// Now stamps new expenses and tokens.
	Now func() time.Time

	secret   []byte
	tokenTTL time.Duration

	mu     sync.Mutex
	nextID int64
	users  map[string]*user
	hits   map[string]int
	faults map[string]int
	delays map[string]time.Duration
	holds  map[string]chan struct{}

	ts *httptest.Server
}

// NewServer starts a fake backend that is closed when t finishes.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		Now:      time.Now,
		secret:   []byte("clienttest-secret"),
		tokenTTL: time.Hour,
		users:    make(map[string]*user),
		hits:     make(map[string]int),
		faults:   make(map[string]int),
		delays:   make(map[string]time.Duration),
		holds:    make(map[string]chan struct{}),
	}
	s.ts = httptest.NewServer(s.Handler())
	s.URL = s.ts.URL
	t.Cleanup(func() {
		s.ReleaseAll()
		s.ts.Close()
	})
	return s
}

// Handler exposes the routes without a listener.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Post("/auth/login", s.login)
	r.Post("/auth/signup", s.signup)
	r.Post("/auth/reset-password", s.resetPassword)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/auth/me", s.me)

		r.Get("/budget/", s.getBudget)
		r.Put("/budget/", s.putBudget)
		r.Get("/budget/check-threshold", s.checkThreshold)

		r.Get("/expenses/", s.listExpenses)
		r.Post("/expenses/", s.createExpense)
		r.Get("/expenses/total", s.expensesTotal)
		r.Delete("/expenses/{id}", s.deleteExpense)

		r.Get("/shopping-list/", s.listItems)
		r.Post("/shopping-list/", s.createItem)
		r.Put("/shopping-list/{id}", s.updateItem)
		r.Delete("/shopping-list/{id}", s.deleteItem)
	})
	return r
}

// AddUser registers an account directly.
func (s *Server) AddUser(username, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.users[username] = &user{id: s.nextID, username: username, hash: hash, createdAt: s.Now()}
}

// SetBudget seeds a user's budget.
func (s *Server) SetBudget(username, amount string) {
	d := decimal.RequireFromString(amount)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustUser(username).budget = &d
}

// AddExpense seeds an expense with an explicit timestamp and returns its id.
func (s *Server) AddExpense(username, name, price string, at time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	u := s.mustUser(username)
	u.expenses = append(u.expenses, expense{id: s.nextID, name: name, price: decimal.RequireFromString(price), timestamp: at})
	return s.nextID
}

// AddItem seeds a shopping item and returns its id.
func (s *Server) AddItem(username, name, quantity string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	u := s.mustUser(username)
	u.items = append(u.items, item{id: s.nextID, name: name, quantity: quantity})
	return s.nextID
}

// Token mints a valid token for username without going through /auth/login.
func (s *Server) Token(username string) string {
	return s.sign(username, s.Now().Add(s.tokenTTL))
}

// ExpiredToken mints a token whose exp already passed.
func (s *Server) ExpiredToken(username string) string {
	return s.sign(username, s.Now().Add(-time.Minute))
}

// Fail makes every request to route ("GET /expenses/total") answer status.
func (s *Server) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[route] = status
}

// Delay makes route sleep d before answering.
func (s *Server) Delay(route string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[route] = d
}

// Hold parks requests to route until the returned release func is called.
func (s *Server) Hold(route string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holds[route] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.holds[route] == ch {
				delete(s.holds, route)
			}
			s.mu.Unlock()
			close(ch)
		})
	}
}

// ReleaseAll drops all holds.
func (s *Server) ReleaseAll() {
	s.mu.Lock()
	holds := s.holds
	s.holds = make(map[string]chan struct{})
	s.mu.Unlock()
	for _, ch := range holds {
		close(ch)
	}
}

// Reset clears injected faults and delays.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = make(map[string]int)
	s.delays = make(map[string]time.Duration)
}

// Hits returns how many requests reached route.
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// TotalHits returns the number of requests served on any route.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.hits {
		n += v
	}
	return n
}

func (s *Server) mustUser(username string) *user {
	u, ok := s.users[username]
	if !ok {
		panic("clienttest: unknown user " + username)
	}
	return u
}

func (s *Server) sign(username string, exp time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(s.Now()),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path

		s.mu.Lock()
		s.hits[route]++
		status, failing := s.faults[route]
		delay := s.delays[route]
		hold := s.holds[route]
		s.mu.Unlock()

		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			writeDetail(w, status, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type userKey struct{}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.Now))
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		s.mu.Lock()
		_, known := s.users[claims.Subject]
		s.mu.Unlock()
		if !known {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, claims.Subject)))
	})
}

func currentUser(r *http.Request) string {
	name, _ := r.Context().Value(userKey{}).(string)
	return name
}

type expenseWire struct {
	ID        int64       `json:"id"`
	ItemName  string      `json:"item_name"`
	Quantity  *string     `json:"quantity"`
	Price     json.Number `json:"price"`
	Timestamp string      `json:"timestamp"`
}

func (e expense) wire() expenseWire {
	var qty *string
	if e.quantity != "" {
		q := e.quantity
		qty = &q
	}
	return expenseWire{
		ID:        e.id,
		ItemName:  e.name,
		Quantity:  qty,
		Price:     json.Number(e.price.String()),
		Timestamp: e.timestamp.UTC().Format(tsLayout),
	}
}

type itemWire struct {
	ID       int64   `json:"id"`
	ItemName string  `json:"item_name"`
	Quantity *string `json:"quantity"`
}

func (i item) wire() itemWire {
	var qty *string
	if i.quantity != "" {
		q := i.quantity
		qty = &q
	}
	return itemWire{ID: i.id, ItemName: i.name, Quantity: qty}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	u, ok := s.users[req.Username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(req.Password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": s.Token(req.Username),
		"token_type":   "bearer",
	})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	_, exists := s.users[req.Username]
	s.mu.Unlock()
	if exists {
		writeDetail(w, http.StatusBadRequest, "Username already registered")
		return
	}

	s.AddUser(req.Username, req.Password)

	s.mu.Lock()
	u := s.users[req.Username]
	u.fullName, u.email, u.phone = req.FullName, req.Email, req.Phone
	id := u.id
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "username": req.Username})
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string `json:"username"`
		NewPassword string `json:"new_password"`
	}
	if !decode(w, r, &req) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[req.Username]
	if !ok {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	u.hash = hash
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successful"})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u := s.users[currentUser(r)]
	body := map[string]string{
		"username":   u.username,
		"full_name":  u.fullName,
		"email":      u.email,
		"phone":      u.phone,
		"created_at": u.createdAt.UTC().Format(tsLayout),
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) getBudget(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	b := s.users[currentUser(r)].budget
	s.mu.Unlock()
	if b == nil {
		writeDetail(w, http.StatusNotFound, "No budget found.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]json.Number{"amount": json.Number(b.String())})
}

func (s *Server) putBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Amount.IsNegative() {
		writeValidation(w, "amount", "ensure this value is greater than or equal to 0")
		return
	}

	s.mu.Lock()
	amount := req.Amount
	s.users[currentUser(r)].budget = &amount
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]json.Number{"amount": json.Number(amount.String())})
}

func (s *Server) checkThreshold(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u := s.users[currentUser(r)]
	b := u.budget
	spent := total(u.expenses)
	s.mu.Unlock()

	if b == nil {
		writeDetail(w, http.StatusNotFound, "No budget set")
		return
	}

	status, message := "within", "You are within your budget."
	if spent.GreaterThan(*b) {
		status, message = "over", "You have exceeded your budget!"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"message": message,
		"spent":   json.Number(spent.String()),
		"budget":  json.Number(b.String()),
	})
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	list := append([]expense(nil), s.users[currentUser(r)].expenses...)
	s.mu.Unlock()

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].timestamp.Equal(list[j].timestamp) {
			return list[i].id > list[j].id
		}
		return list[i].timestamp.After(list[j].timestamp)
	})

	out := make([]expenseWire, 0, len(list))
	for _, e := range list {
		out = append(out, e.wire())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemName string          `json:"item_name"`
		Quantity *string         `json:"quantity"`
		Price    decimal.Decimal `json:"price"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ItemName) == "" {
		writeValidation(w, "item_name", "field required")
		return
	}

	e := expense{name: req.ItemName, price: req.Price, timestamp: s.Now()}
	if req.Quantity != nil {
		e.quantity = *req.Quantity
	}

	s.mu.Lock()
	s.nextID++
	e.id = s.nextID
	u := s.users[currentUser(r)]
	u.expenses = append(u.expenses, e)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, e.wire())
}

func (s *Server) expensesTotal(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sum := total(s.users[currentUser(r)].expenses)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, json.Number(sum.String()))
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[currentUser(r)]
	for i, e := range u.expenses {
		if e.id == id {
			u.expenses = append(u.expenses[:i], u.expenses[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Expense not found")
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := s.users[currentUser(r)].items
	out := make([]itemWire, 0, len(items))
	for _, it := range items {
		out = append(out, it.wire())
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemName string `json:"item_name"`
		Quantity string `json:"quantity"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ItemName) == "" {
		writeValidation(w, "item_name", "field required")
		return
	}

	s.mu.Lock()
	s.nextID++
	it := item{id: s.nextID, name: req.ItemName, quantity: req.Quantity}
	u := s.users[currentUser(r)]
	u.items = append(u.items, it)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, it.wire())
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		ItemName string `json:"item_name"`
		Quantity string `json:"quantity"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[currentUser(r)]
	for i := range u.items {
		if u.items[i].id == id {
			u.items[i].name, u.items[i].quantity = req.ItemName, req.Quantity
			writeJSON(w, http.StatusOK, u.items[i].wire())
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Item not found")
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[currentUser(r)]
	for i, it := range u.items {
		if it.id == id {
			u.items = append(u.items[:i], u.items[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Item deleted"})
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Item not found")
}

func total(expenses []expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.price)
	}
	return sum
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeValidation(w, "id", "value is not a valid integer")
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeValidation(w, "body", "invalid JSON")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeValidation(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": []map[string]any{{"loc": []string{"body", field}, "msg": msg, "type": "value_error"}},
	})
}
