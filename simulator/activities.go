package simulator

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// driveActivities runs post, comment, and like loops until ctx is done.
// Each loop ticks at the per-user frequency scaled over the population so
// the aggregate rate matches the configuration.
func (s *Simulator) driveActivities(ctx context.Context) {
	postTicker := time.NewTicker(frequencyInterval(s.config.PostFrequency, len(s.users)))
	commentTicker := time.NewTicker(frequencyInterval(s.config.CommentFrequency, len(s.users)))
	likeTicker := time.NewTicker(frequencyInterval(s.config.LikeFrequency, len(s.users)))
	defer postTicker.Stop()
	defer commentTicker.Stop()
	defer likeTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-postTicker.C:
			go s.createRandomPost(ctx)
		case <-commentTicker.C:
			go s.createRandomComment(ctx)
		case <-likeTicker.C:
			go s.toggleRandomLike(ctx)
		}
	}
}

// frequencyInterval converts events-per-user-per-minute into a tick interval
// for the whole population, floored at 50ms.
func frequencyInterval(perUserPerMinute float64, users int) time.Duration {
	if perUserPerMinute <= 0 || users == 0 {
		return time.Hour
	}
	interval := time.Duration(float64(time.Minute) / (perUserPerMinute * float64(users)))
	if interval < 50*time.Millisecond {
		return 50 * time.Millisecond
	}
	return interval
}

func (s *Simulator) createRandomPost(ctx context.Context) {
	user, communityID := s.pickMember()
	if user == nil {
		return
	}

	s.mu.RLock()
	categoryIDs := s.categories[communityID]
	s.mu.RUnlock()
	if len(categoryIDs) == 0 {
		return
	}
	categoryID := categoryIDs[rand.Intn(len(categoryIDs))]

	var created struct {
		ID uuid.UUID `json:"id"`
	}
	err := s.post(ctx, "/api/posts", user.Token, map[string]interface{}{
		"title":     fmt.Sprintf("Simulated post %d", rand.Intn(1000000)),
		"content":   "Synthetic content generated by the load driver.",
		"community": communityID,
		"category":  categoryID,
		"tags":      []string{"simulation"},
	}, &created)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.posts = append(s.posts, &seenPost{ID: created.ID, CommunityID: communityID})
	user.Posts = append(user.Posts, created.ID)
	s.mu.Unlock()

	s.stats.mu.Lock()
	s.stats.TotalPosts++
	s.stats.mu.Unlock()
}

func (s *Simulator) createRandomComment(ctx context.Context) {
	user, target := s.pickPostForUser()
	if user == nil || target == nil {
		return
	}

	// Roughly a quarter of comment activity goes to replies once a post
	// has comments to reply to.
	s.mu.RLock()
	commentCount := len(target.CommentIDs)
	var commentID uuid.UUID
	if commentCount > 0 {
		commentID = target.CommentIDs[rand.Intn(commentCount)]
	}
	s.mu.RUnlock()

	if commentCount > 0 && rand.Intn(4) == 0 {
		path := fmt.Sprintf("/api/posts/%s/comments/%s/replies", target.ID, commentID)
		err := s.post(ctx, path, user.Token, map[string]interface{}{
			"content": fmt.Sprintf("Simulated reply %d", rand.Intn(1000000)),
		}, nil)
		if err != nil {
			return
		}
		s.stats.mu.Lock()
		s.stats.TotalReplies++
		s.stats.mu.Unlock()
		return
	}

	var created struct {
		ID uuid.UUID `json:"id"`
	}
	path := fmt.Sprintf("/api/posts/%s/comments", target.ID)
	err := s.post(ctx, path, user.Token, map[string]interface{}{
		"content": fmt.Sprintf("Simulated comment %d", rand.Intn(1000000)),
	}, &created)
	if err != nil {
		return
	}

	s.mu.Lock()
	target.CommentIDs = append(target.CommentIDs, created.ID)
	s.mu.Unlock()

	s.stats.mu.Lock()
	s.stats.TotalComments++
	s.stats.mu.Unlock()
}

func (s *Simulator) toggleRandomLike(ctx context.Context) {
	user, target := s.pickPostForUser()
	if user == nil || target == nil {
		return
	}

	path := fmt.Sprintf("/api/posts/%s/like", target.ID)
	if err := s.post(ctx, path, user.Token, nil, nil); err != nil {
		return
	}

	s.stats.mu.Lock()
	s.stats.TotalLikes++
	s.stats.mu.Unlock()
}

// pickMember returns a random user together with one of their communities.
func (s *Simulator) pickMember() (*SimulatedUser, uuid.UUID) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.users) == 0 {
		return nil, uuid.Nil
	}
	for attempts := 0; attempts < 10; attempts++ {
		user := s.users[rand.Intn(len(s.users))]
		if len(user.Memberships) == 0 {
			continue
		}
		return user, user.Memberships[rand.Intn(len(user.Memberships))]
	}
	return nil, uuid.Nil
}

// pickPostForUser returns a random user and a post in one of their
// communities.
func (s *Simulator) pickPostForUser() (*SimulatedUser, *seenPost) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.users) == 0 || len(s.posts) == 0 {
		return nil, nil
	}
	for attempts := 0; attempts < 10; attempts++ {
		user := s.users[rand.Intn(len(s.users))]
		target := s.posts[rand.Intn(len(s.posts))]
		if containsUUID(user.Memberships, target.CommunityID) {
			return user, target
		}
	}
	return nil, nil
}

func (s *Simulator) reportProgress(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.stats.mu.RLock()
			log.Printf("Progress: requests=%d ok=%d failed=%d posts=%d comments=%d replies=%d likes=%d",
				s.stats.TotalRequests, s.stats.SuccessRequests, s.stats.FailedRequests,
				s.stats.TotalPosts, s.stats.TotalComments, s.stats.TotalReplies, s.stats.TotalLikes)
			s.stats.mu.RUnlock()
		}
	}
}

func (s *Simulator) printSummary() {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()

	elapsed := time.Since(s.stats.StartTime)
	var avgLatency time.Duration
	if len(s.stats.RequestLatencies) > 0 {
		var total time.Duration
		for _, l := range s.stats.RequestLatencies {
			total += l
		}
		avgLatency = total / time.Duration(len(s.stats.RequestLatencies))
	}

	log.Printf("Simulation finished in %s", elapsed.Round(time.Second))
	log.Printf("  Requests:  %d total, %d ok, %d failed", s.stats.TotalRequests, s.stats.SuccessRequests, s.stats.FailedRequests)
	log.Printf("  Content:   %d posts, %d comments, %d replies, %d likes", s.stats.TotalPosts, s.stats.TotalComments, s.stats.TotalReplies, s.stats.TotalLikes)
	log.Printf("  Latency:   %s average over %d requests", avgLatency, len(s.stats.RequestLatencies))
	if elapsed > 0 {
		log.Printf("  Throughput: %.1f requests/sec", float64(s.stats.TotalRequests)/elapsed.Seconds())
	}
}
