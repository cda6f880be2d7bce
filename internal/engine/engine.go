package engine

import (
	"tribofy/internal/database"
	"tribofy/internal/engine/actors"
	"tribofy/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Engine owns the domain actors. Each aggregate type gets one actor, so
// every mutation of that type is serialized through its mailbox.
type Engine struct {
	userActor      *actor.PID
	communityActor *actor.PID
	categoryActor  *actor.PID
	postActor      *actor.PID
}

func NewEngine(system *actor.ActorSystem, metrics *utils.MetricsCollector, mongodb *database.MongoDB) *Engine {
	context := system.Root

	userProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewUserActor(metrics, mongodb)
	})
	userPID := context.Spawn(userProps)

	communityProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewCommunityActor(metrics, mongodb)
	})
	communityPID := context.Spawn(communityProps)

	categoryProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewCategoryActor(metrics, mongodb)
	})
	categoryPID := context.Spawn(categoryProps)

	postProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewPostActor(metrics, mongodb)
	})
	postPID := context.Spawn(postProps)

	return &Engine{
		userActor:      userPID,
		communityActor: communityPID,
		categoryActor:  categoryPID,
		postActor:      postPID,
	}
}

// GetUserActor returns the PID of the user actor
func (e *Engine) GetUserActor() *actor.PID {
	return e.userActor
}

// GetCommunityActor returns the PID of the community actor
func (e *Engine) GetCommunityActor() *actor.PID {
	return e.communityActor
}

// GetCategoryActor returns the PID of the category actor
func (e *Engine) GetCategoryActor() *actor.PID {
	return e.categoryActor
}

// GetPostActor returns the PID of the post actor
func (e *Engine) GetPostActor() *actor.PID {
	return e.postActor
}
