package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SimConfig controls the synthetic load shape.
type SimConfig struct {
	NumUsers         int
	NumCommunities   int
	SimulationTime   time.Duration
	PostFrequency    float64 // posts per user per minute
	CommentFrequency float64 // comments per user per minute
	LikeFrequency    float64 // like toggles per user per minute
	APIBaseURL       string
}

// Stats aggregates request outcomes across the whole run.
type Stats struct {
	mu               sync.RWMutex
	StartTime        time.Time
	TotalRequests    int64
	SuccessRequests  int64
	FailedRequests   int64
	TotalPosts       int64
	TotalComments    int64
	TotalReplies     int64
	TotalLikes       int64
	RequestLatencies []time.Duration
}

func (st *Stats) record(latency time.Duration, ok bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.TotalRequests++
	if ok {
		st.SuccessRequests++
	} else {
		st.FailedRequests++
	}
	st.RequestLatencies = append(st.RequestLatencies, latency)
}

// SimulatedUser is one registered account driving load.
type SimulatedUser struct {
	ID          uuid.UUID
	Token       string
	Email       string
	Memberships []uuid.UUID
	Posts       []uuid.UUID
}

// seenPost tracks a post id with the community it belongs to and the
// comments created on it so far.
type seenPost struct {
	ID          uuid.UUID
	CommunityID uuid.UUID
	CommentIDs  []uuid.UUID
}

// Simulator drives the HTTP API the way a population of users would.
type Simulator struct {
	config      SimConfig
	stats       *Stats
	users       []*SimulatedUser
	communities []uuid.UUID
	categories  map[uuid.UUID][]uuid.UUID // community -> its categories
	posts       []*seenPost
	client      *http.Client
	mu          sync.RWMutex
}

func New(config SimConfig) *Simulator {
	return &Simulator{
		config: config,
		stats: &Stats{
			StartTime:        time.Now(),
			RequestLatencies: make([]time.Duration, 0),
		},
		categories: make(map[uuid.UUID][]uuid.UUID),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Run initializes the population and drives activity until the configured
// duration elapses or ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) error {
	log.Printf("Starting simulation...")

	if err := s.initialize(ctx); err != nil {
		return fmt.Errorf("initialization failed: %v", err)
	}

	deadline, cancel := context.WithTimeout(ctx, s.config.SimulationTime)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.driveActivities(deadline)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.reportProgress(deadline)
	}()

	wg.Wait()
	s.printSummary()
	return nil
}

func (s *Simulator) initialize(ctx context.Context) error {
	log.Printf("Phase 1: Registering %d users...", s.config.NumUsers)
	if err := s.registerUsers(ctx); err != nil {
		return err
	}

	log.Printf("Phase 2: Creating %d communities with categories...", s.config.NumCommunities)
	if err := s.createCommunities(ctx); err != nil {
		return err
	}

	log.Printf("Phase 3: Simulating community joins...")
	if err := s.joinCommunities(ctx); err != nil {
		return err
	}

	log.Printf("Initialization completed: %d users, %d communities", len(s.users), len(s.communities))
	return nil
}

func (s *Simulator) registerUsers(ctx context.Context) error {
	numWorkers := 5
	jobs := make(chan int, numWorkers)
	results := make(chan *SimulatedUser, numWorkers)

	// Shared rate limiter keeps registration at 5 requests per second.
	rateLimiter := time.NewTicker(200 * time.Millisecond)
	defer rateLimiter.Stop()

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for userNum := range jobs {
				select {
				case <-ctx.Done():
					return
				case <-rateLimiter.C:
				}

				user, err := s.registerOne(ctx, userNum)
				if err != nil {
					log.Printf("Worker %d: failed to register user %d: %v", workerID, userNum, err)
					continue
				}
				results <- user
			}
		}(i)
	}

	go func() {
		for i := 0; i < s.config.NumUsers; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for user := range results {
		s.mu.Lock()
		s.users = append(s.users, user)
		s.mu.Unlock()
	}

	if len(s.users) == 0 {
		return fmt.Errorf("no users could be registered")
	}
	return nil
}

func (s *Simulator) registerOne(ctx context.Context, userNum int) (*SimulatedUser, error) {
	email := fmt.Sprintf("sim_user_%d_%d@test.com", userNum, rand.Intn(100000))
	password := "simulated-password-1"

	var registered struct {
		ID uuid.UUID `json:"id"`
	}
	err := s.post(ctx, "/api/users/register", "", map[string]interface{}{
		"firstName": fmt.Sprintf("Sim%d", userNum),
		"lastName":  "User",
		"email":     email,
		"password":  password,
	}, &registered)
	if err != nil {
		return nil, err
	}

	var login struct {
		Token string `json:"token"`
	}
	err = s.post(ctx, "/api/users/login", "", map[string]interface{}{
		"email":    email,
		"password": password,
	}, &login)
	if err != nil {
		return nil, err
	}

	return &SimulatedUser{
		ID:    registered.ID,
		Token: login.Token,
		Email: email,
	}, nil
}

func (s *Simulator) createCommunities(ctx context.Context) error {
	for i := 0; i < s.config.NumCommunities; i++ {
		owner := s.users[rand.Intn(len(s.users))]

		var community struct {
			ID uuid.UUID `json:"id"`
		}
		err := s.post(ctx, "/api/communities", owner.Token, map[string]interface{}{
			"name":        fmt.Sprintf("sim community %d %d", i, rand.Intn(100000)),
			"description": "Synthetic community for load testing",
			"tags":        []string{"simulation"},
		}, &community)
		if err != nil {
			log.Printf("Failed to create community %d: %v", i, err)
			continue
		}

		s.mu.Lock()
		s.communities = append(s.communities, community.ID)
		owner.Memberships = append(owner.Memberships, community.ID)
		s.mu.Unlock()

		// Two categories per community, one nested under the other.
		var parent struct {
			ID uuid.UUID `json:"id"`
		}
		path := fmt.Sprintf("/api/communities/%s/categories", community.ID)
		if err := s.post(ctx, path, owner.Token, map[string]interface{}{
			"name":        "General",
			"description": "General discussion",
		}, &parent); err != nil {
			log.Printf("Failed to create category for community %s: %v", community.ID, err)
			continue
		}

		var child struct {
			ID uuid.UUID `json:"id"`
		}
		if err := s.post(ctx, path, owner.Token, map[string]interface{}{
			"name":           "Announcements",
			"description":    "Nested under General",
			"parentCategory": parent.ID,
		}, &child); err != nil {
			log.Printf("Failed to create child category for community %s: %v", community.ID, err)
		}

		s.mu.Lock()
		s.categories[community.ID] = append(s.categories[community.ID], parent.ID)
		if child.ID != uuid.Nil {
			s.categories[community.ID] = append(s.categories[community.ID], child.ID)
		}
		s.mu.Unlock()
	}

	if len(s.communities) == 0 {
		return fmt.Errorf("no communities could be created")
	}
	return nil
}

func (s *Simulator) joinCommunities(ctx context.Context) error {
	for _, user := range s.users {
		// Each user joins between one and three communities.
		joins := 1 + rand.Intn(3)
		for j := 0; j < joins && j < len(s.communities); j++ {
			communityID := s.communities[rand.Intn(len(s.communities))]
			if containsUUID(user.Memberships, communityID) {
				continue
			}
			path := fmt.Sprintf("/api/communities/%s/join", communityID)
			if err := s.post(ctx, path, user.Token, nil, nil); err != nil {
				continue
			}
			s.mu.Lock()
			user.Memberships = append(user.Memberships, communityID)
			s.mu.Unlock()
		}
	}
	return nil
}

func containsUUID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

// post issues an authenticated JSON POST and decodes the response into out
// when it is non-nil.
func (s *Simulator) post(ctx context.Context, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIBaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		s.stats.record(latency, false)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		s.stats.record(latency, false)
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: status %d: %s", http.MethodPost, path, resp.StatusCode, string(payload))
	}
	s.stats.record(latency, true)

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
