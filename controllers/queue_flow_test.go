package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"queuebarber-backend/config"
	"queuebarber-backend/controllers"
	"queuebarber-backend/models"
	"queuebarber-backend/ws"
)

var hubOnce sync.Once

// AuthMiddlewareTest injects the owner ID from a header instead of a JWT
func AuthMiddlewareTest() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userId", c.Request.Header.Get("X-Test-UserID"))
		c.Next()
	}
}

// setupTestServer connects to the database given by TEST_DB_URL, resets the
// schema and wires the real handlers behind a header-based test auth.
func setupTestServer(t *testing.T) *httptest.Server {
	dsn := os.Getenv("TEST_DB_URL")
	if dsn == "" {
		t.Skip("TEST_DB_URL not set; skipping database-backed flow test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	config.DB = db

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Salon{}, &models.Service{}, &models.Client{}))
	db.Exec("TRUNCATE TABLE users, salons, services, clients RESTART IDENTITY CASCADE;")

	hubOnce.Do(func() {
		go ws.HubInstance.Run()
	})

	gin.SetMode(gin.TestMode)
	r := gin.New()

	public := r.Group("/salons")
	{
		public.GET("/:slug", controllers.GetSalonBySlug)
		public.GET("/:slug/queue", controllers.GetQueue)
		public.POST("/:slug/queue/join", controllers.JoinQueue)
	}

	api := r.Group("/api", AuthMiddlewareTest())
	{
		api.POST("/salons", controllers.CreateSalon)
		api.DELETE("/salons/:id", controllers.DeleteSalon)
		api.POST("/salons/:id/queue", controllers.AddClient)
		api.PUT("/salons/:id/queue/:clientId/done", controllers.MarkClientDone)
		api.DELETE("/salons/:id/queue/:clientId", controllers.RemoveClient)
		api.DELETE("/salons/:id/queue", controllers.ClearCompleted)
		api.GET("/salons/:id/dashboard", controllers.GetDashboardOverview)
	}

	return httptest.NewServer(r)
}

type queueView struct {
	Clients []struct {
		ID                string `json:"id"`
		Name              string `json:"name"`
		Status            string `json:"status"`
		Position          int    `json:"position"`
		EstimatedWaitTime int    `json:"estimatedWaitTime"`
	} `json:"clients"`
	Stats struct {
		TotalWaiting      int  `json:"totalWaiting"`
		EstimatedWaitTime int  `json:"estimatedWaitTime"`
		IsOpen            bool `json:"isOpen"`
	} `json:"stats"`
}

func doJSON(t *testing.T, method, url, userID string, body interface{}) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Test-UserID", userID)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return res
}

func decode(t *testing.T, res *http.Response, out interface{}) {
	defer res.Body.Close()
	require.NoError(t, json.NewDecoder(res.Body).Decode(out))
}

func getQueue(t *testing.T, ts *httptest.Server, slug string) queueView {
	res := doJSON(t, http.MethodGet, ts.URL+"/salons/"+slug+"/queue", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var view queueView
	decode(t, res, &view)
	return view
}

func TestQueueFlow(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	owner := models.User{Email: "owner@example.com", Name: "Owner", Password: "secret-password"}
	require.NoError(t, config.DB.Create(&owner).Error)
	ownerID := owner.ID.String()

	// Create a salon with one 20-minute and one 10-minute service
	res := doJSON(t, http.MethodPost, ts.URL+"/api/salons", ownerID, gin.H{
		"name":  "Chez Marco",
		"phone": "+237670000001",
		"city":  "Douala",
		"services": []gin.H{
			{"name": "Cut", "duration": 20},
			{"name": "Shave", "duration": 10},
		},
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var salon models.Salon
	decode(t, res, &salon)
	require.Equal(t, "chez-marco", salon.Slug)
	require.Len(t, salon.Services, 2)

	// A second salon with the same derived slug is rejected and not created
	res = doJSON(t, http.MethodPost, ts.URL+"/api/salons", ownerID, gin.H{
		"name":  "Chez Marco",
		"phone": "+237670000002",
		"city":  "Yaounde",
		"services": []gin.H{
			{"name": "Cut", "duration": 15},
		},
	})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	res.Body.Close()
	var salonCount int64
	config.DB.Model(&models.Salon{}).Count(&salonCount)
	assert.EqualValues(t, 1, salonCount)

	cut := salon.Services[0].ID.String()
	shave := salon.Services[1].ID.String()

	join := func(name, serviceID string) {
		res := doJSON(t, http.MethodPost, ts.URL+"/salons/chez-marco/queue/join", "", gin.H{
			"name":      name,
			"serviceId": serviceID,
		})
		require.Equal(t, http.StatusCreated, res.StatusCode)
		res.Body.Close()
	}

	// A(20), B(20), C(10) join in that order
	join("A", cut)
	join("B", cut)
	join("C", shave)

	view := getQueue(t, ts, "chez-marco")
	require.Len(t, view.Clients, 3)
	assert.Equal(t, 3, view.Stats.TotalWaiting)
	assert.Equal(t, 50, view.Stats.EstimatedWaitTime)
	assert.Equal(t, []int{1, 2, 3}, []int{view.Clients[0].Position, view.Clients[1].Position, view.Clients[2].Position})
	assert.Equal(t, 0, view.Clients[0].EstimatedWaitTime)
	assert.Equal(t, 20, view.Clients[1].EstimatedWaitTime)
	assert.Equal(t, 40, view.Clients[2].EstimatedWaitTime)

	clientA := view.Clients[0].ID
	clientC := view.Clients[2].ID
	salonPath := ts.URL + "/api/salons/" + salon.ID.String()

	// Mark A done; positions keep ranking the full list, waits re-base
	res = doJSON(t, http.MethodPut, salonPath+"/queue/"+clientA+"/done", ownerID, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	view = getQueue(t, ts, "chez-marco")
	require.Len(t, view.Clients, 3)
	assert.Equal(t, "done", view.Clients[0].Status)
	assert.Equal(t, 1, view.Clients[0].Position)
	assert.Equal(t, 2, view.Stats.TotalWaiting)
	assert.Equal(t, 0, view.Clients[1].EstimatedWaitTime)
	assert.Equal(t, 20, view.Clients[2].EstimatedWaitTime)

	// Marking done twice is a no-op
	res = doJSON(t, http.MethodPut, salonPath+"/queue/"+clientA+"/done", ownerID, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()
	again := getQueue(t, ts, "chez-marco")
	assert.Equal(t, view, again)

	// Remove C, then clear completed: only B remains, re-ranked from 1
	res = doJSON(t, http.MethodDelete, salonPath+"/queue/"+clientC, ownerID, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	res = doJSON(t, http.MethodDelete, salonPath+"/queue", ownerID, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var clearedBody map[string]interface{}
	decode(t, res, &clearedBody)
	assert.EqualValues(t, 1, clearedBody["cleared"])

	view = getQueue(t, ts, "chez-marco")
	require.Len(t, view.Clients, 1)
	assert.Equal(t, "B", view.Clients[0].Name)
	assert.Equal(t, "waiting", view.Clients[0].Status)
	assert.Equal(t, 1, view.Clients[0].Position)
	assert.Equal(t, 0, view.Clients[0].EstimatedWaitTime)
	assert.Equal(t, 1, view.Stats.TotalWaiting)

	// Dashboard reflects the same projection
	res = doJSON(t, http.MethodGet, salonPath+"/dashboard", ownerID, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var overview map[string]interface{}
	decode(t, res, &overview)
	assert.EqualValues(t, 1, overview["totalWaiting"])
	assert.EqualValues(t, 20, overview["estimatedWaitTime"])
}

func TestJoinClosedSalonRejected(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	owner := models.User{Email: "closed@example.com", Name: "Owner", Password: "secret-password"}
	require.NoError(t, config.DB.Create(&owner).Error)

	salon := models.Salon{
		OwnerID: owner.ID,
		Name:    "Night Cuts",
		Slug:    "night-cuts",
		Phone:   "+237670000003",
		City:    "Douala",
		IsOpen:  false,
		Services: []models.Service{
			{Name: "Cut", Duration: 20},
		},
	}
	require.NoError(t, config.DB.Create(&salon).Error)

	res := doJSON(t, http.MethodPost, ts.URL+"/salons/night-cuts/queue/join", "", gin.H{
		"name":      "Late Guy",
		"serviceId": salon.Services[0].ID.String(),
	})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	res.Body.Close()

	view := getQueue(t, ts, "night-cuts")
	assert.Empty(t, view.Clients)
	assert.False(t, view.Stats.IsOpen)

	// The owner can still queue a walk-in who is already in the shop
	res = doJSON(t, http.MethodPost, ts.URL+"/api/salons/"+salon.ID.String()+"/queue", owner.ID.String(), gin.H{
		"name":      "Regular",
		"serviceId": salon.Services[0].ID.String(),
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	res.Body.Close()

	view = getQueue(t, ts, "night-cuts")
	require.Len(t, view.Clients, 1)
	assert.Equal(t, "Regular", view.Clients[0].Name)
	assert.Equal(t, 1, view.Stats.TotalWaiting)
}

func TestDeletedSalonNameReusable(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	owner := models.User{Email: "reuse@example.com", Name: "Owner", Password: "secret-password"}
	require.NoError(t, config.DB.Create(&owner).Error)
	ownerID := owner.ID.String()

	create := func() *http.Response {
		return doJSON(t, http.MethodPost, ts.URL+"/api/salons", ownerID, gin.H{
			"name":  "Second Life",
			"phone": "+237670000004",
			"city":  "Douala",
			"services": []gin.H{
				{"name": "Cut", "duration": 20},
			},
		})
	}

	res := create()
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var salon models.Salon
	decode(t, res, &salon)

	res = doJSON(t, http.MethodDelete, ts.URL+"/api/salons/"+salon.ID.String(), ownerID, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	// The slug is free again: same name must create cleanly, not 500
	res = create()
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var recreated models.Salon
	decode(t, res, &recreated)
	assert.Equal(t, "second-life", recreated.Slug)
	assert.NotEqual(t, salon.ID, recreated.ID)
}
