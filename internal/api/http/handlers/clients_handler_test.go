package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/telesales/callops-service/internal/api/dto"
	apihttp "github.com/telesales/callops-service/internal/api/http"
	"github.com/telesales/callops-service/internal/api/http/handlers"
	"github.com/telesales/callops-service/internal/domain"
)

type fakeClientRepo struct {
	clients map[string]*domain.Client
	seq     int
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[string]*domain.Client)}
}

func (r *fakeClientRepo) Upsert(_ context.Context, client *domain.Client) error {
	client.Phone = domain.NormalizePhone(client.Phone)
	if existing, ok := r.clients[client.Phone]; ok {
		client.ID = existing.ID
		client.Items = domain.MergeItems(existing.Items, client.Items)
		client.CreatedAt = existing.CreatedAt
	} else {
		r.seq++
		client.ID = fmt.Sprintf("client-%d", r.seq)
		client.CreatedAt = time.Now()
	}
	if client.Acceptance == "" {
		client.Acceptance = domain.LevelMedium
	}
	if client.Satisfaction == "" {
		client.Satisfaction = domain.LevelMedium
	}
	stored := *client
	r.clients[client.Phone] = &stored
	return nil
}

func (r *fakeClientRepo) GetByID(_ context.Context, id string) (*domain.Client, error) {
	for _, c := range r.clients {
		if c.ID == id {
			dup := *c
			return &dup, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeClientRepo) GetByPhone(_ context.Context, phone string) (*domain.Client, error) {
	if c, ok := r.clients[phone]; ok {
		dup := *c
		return &dup, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeClientRepo) List(_ context.Context) ([]domain.Client, error) {
	out := make([]domain.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeClientRepo) TouchLastInteraction(_ context.Context, clientID string, at time.Time) error {
	for _, c := range r.clients {
		if c.ID == clientID {
			c.LastInteraction = &at
		}
	}
	return nil
}

func newClientsApp(repo *fakeClientRepo) *fiber.App {
	app := fiber.New()
	apihttp.RegisterMiddlewares(app, zap.NewNop(), 0)
	h := handlers.NewClientsHandler(repo, nil)
	app.Post("/clients", h.Save)
	return app
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSaveClientUpsertsByPhone(t *testing.T) {
	repo := newFakeClientRepo()
	app := newClientsApp(repo)

	resp, err := app.Test(jsonRequest(t, "POST", "/clients", dto.UpsertClientRequest{
		Name:  "Ana Souza",
		Phone: "(11) 99999-0000",
		Items: []string{"Bomba"},
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Data dto.ClientResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "11999990000", body.Data.Phone)
	assert.Equal(t, []string{"Bomba"}, body.Data.Items)
	assert.Equal(t, domain.LevelMedium, body.Data.Acceptance)

	// Same phone again: the record is updated, not duplicated.
	resp, err = app.Test(jsonRequest(t, "POST", "/clients", dto.UpsertClientRequest{
		Name:  "Ana Souza",
		Phone: "11999990000",
		Items: []string{"Filtro"},
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Len(t, repo.clients, 1)
	assert.ElementsMatch(t, []string{"Bomba", "Filtro"}, repo.clients["11999990000"].Items)
}

func TestSaveClientRequiresPhone(t *testing.T) {
	repo := newFakeClientRepo()
	app := newClientsApp(repo)

	resp, err := app.Test(jsonRequest(t, "POST", "/clients", dto.UpsertClientRequest{
		Name:  "Ana Souza",
		Phone: "sem telefone",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, repo.clients)
}

func TestSaveClientRequiresName(t *testing.T) {
	repo := newFakeClientRepo()
	app := newClientsApp(repo)

	resp, err := app.Test(jsonRequest(t, "POST", "/clients", dto.UpsertClientRequest{
		Phone: "11999990000",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, repo.clients)
}
