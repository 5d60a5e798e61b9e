package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"pairchat/internal/domain/entity"
	"pairchat/internal/domain/policy"
	"pairchat/internal/domain/repository"
	"pairchat/internal/infrastructure/metrics"
	"pairchat/internal/infrastructure/ratelimit"
	"pairchat/pkg/errors"
	"pairchat/pkg/utils"
)

// GatewayUseCase is the enforcement point for client access to the tree.
// Every read and write is evaluated against the authorization policy before
// it reaches the datastore.
type GatewayUseCase struct {
	store       repository.Datastore
	policy      *policy.Policy
	rateLimiter *ratelimit.RateLimiter
	now         func() time.Time
}

// NewGatewayUseCase builds the gateway. rateLimiter may be nil.
func NewGatewayUseCase(store repository.Datastore, pol *policy.Policy, rateLimiter *ratelimit.RateLimiter) *GatewayUseCase {
	return &GatewayUseCase{
		store:       store,
		policy:      pol,
		rateLimiter: rateLimiter,
		now:         time.Now,
	}
}

func (uc *GatewayUseCase) tree(ctx context.Context) policy.Tree {
	return policy.TreeFunc(func(path string) (interface{}, error) {
		return uc.store.Get(ctx, path)
	})
}

// CheckRead fails with PERMISSION_DENIED unless actor may read path.
func (uc *GatewayUseCase) CheckRead(ctx context.Context, actor *policy.Actor, path string) error {
	path = utils.NormalizePath(path)
	allowed := uc.policy.Allow(policy.Request{
		Actor: actor,
		Op:    policy.OpRead,
		Path:  path,
		Now:   uc.now(),
	}, uc.tree(ctx))
	metrics.IncPolicyDecision(policy.OpRead.String(), allowed)

	if !allowed {
		log.Printf("Read Denied: actor=%s path=%s", actorID(actor), path)
		return errors.PermissionDenied(path)
	}
	return nil
}

func (uc *GatewayUseCase) Read(ctx context.Context, actor *policy.Actor, path string) (interface{}, error) {
	if err := uc.CheckRead(ctx, actor, path); err != nil {
		return nil, err
	}
	return uc.store.Get(ctx, utils.NormalizePath(path))
}

// Set replaces the value at path. A nil value deletes it.
func (uc *GatewayUseCase) Set(ctx context.Context, actor *policy.Actor, path string, value interface{}) error {
	path = utils.NormalizePath(path)
	plain, err := utils.Plain(value)
	if err != nil {
		return errors.Validation("Value is not valid JSON", err)
	}

	writes := map[string]interface{}{path: plain}
	if err := uc.authorizeWrites(ctx, actor, writes); err != nil {
		return err
	}
	return uc.store.Set(ctx, path, plain)
}

// Update merges patch into the node at path. Keys of patch may be nested
// paths relative to path; nil values delete.
func (uc *GatewayUseCase) Update(ctx context.Context, actor *policy.Actor, path string, patch map[string]interface{}) error {
	if len(patch) == 0 {
		return errors.Validation("Update must contain at least one field", nil)
	}

	writes := make(map[string]interface{}, len(patch))
	for key, value := range patch {
		plain, err := utils.Plain(value)
		if err != nil {
			return errors.Validation(fmt.Sprintf("Value for %q is not valid JSON", key), err)
		}
		full := utils.JoinPath(path, key)
		if full == "" {
			return errors.Validation("Update keys must not address the root", nil)
		}
		writes[full] = plain
	}

	if err := uc.authorizeWrites(ctx, actor, writes); err != nil {
		return err
	}
	return uc.store.Update(ctx, writes)
}

// authorizeWrites evaluates the write rule of every rule node touched by
// writes. A write below a rule node is evaluated as a write of the whole
// node holding the merged value.
func (uc *GatewayUseCase) authorizeWrites(ctx context.Context, actor *policy.Actor, writes map[string]interface{}) error {
	byNode := make(map[string]map[string]interface{})
	for path, value := range writes {
		node, ok := uc.policy.NodePath(path)
		if !ok {
			metrics.IncPolicyDecision("write", false)
			log.Printf("Write Denied: actor=%s path=%s has no rule", actorID(actor), path)
			return errors.PermissionDenied(path)
		}
		if byNode[node] == nil {
			byNode[node] = make(map[string]interface{})
		}
		byNode[node][path] = value
	}

	type creation struct {
		node     string
		proposed interface{}
	}
	var creations []creation

	now := uc.now()
	tree := uc.tree(ctx)
	for node, nodeWrites := range byNode {
		current, err := uc.store.Get(ctx, node)
		if err != nil {
			return err
		}

		proposed, err := proposedValue(node, current, nodeWrites)
		if err != nil {
			return err
		}

		op := policy.OperationFor(current, proposed)
		allowed := uc.policy.Allow(policy.Request{
			Actor:    actor,
			Op:       op,
			Path:     node,
			Proposed: proposed,
			Now:      now,
		}, tree)
		metrics.IncPolicyDecision(op.String(), allowed)

		if !allowed {
			log.Printf("Write Denied: actor=%s op=%s path=%s", actorID(actor), op, node)
			return errors.PermissionDenied(node)
		}

		if op == policy.OpCreate {
			creations = append(creations, creation{node: node, proposed: proposed})
		}
	}

	for _, c := range creations {
		if err := uc.checkRateLimit(actor, c.node, c.proposed); err != nil {
			return err
		}
	}
	return nil
}

// proposedValue is the canonical value node would hold after writes.
func proposedValue(node string, current interface{}, writes map[string]interface{}) (interface{}, error) {
	nodeSegs := len(utils.SplitPath(node))
	merged := current
	for path, value := range writes {
		merged = utils.WithChild(merged, utils.SplitPath(path)[nodeSegs:], value)
	}

	tree, err := utils.ToTree(merged)
	if err != nil {
		return nil, errors.Validation(fmt.Sprintf("Invalid value at %s", node), err)
	}
	return utils.FromTree(tree), nil
}

// checkRateLimit throttles message creation per sender.
func (uc *GatewayUseCase) checkRateLimit(actor *policy.Actor, node string, proposed interface{}) error {
	if uc.rateLimiter == nil || actor == nil {
		return nil
	}

	segs := utils.SplitPath(node)
	if len(segs) != 3 || segs[0] != entity.RootMessages {
		return nil
	}

	action := ratelimit.ActionSendMessage
	if msg, ok := proposed.(map[string]interface{}); ok && msg["type"] == string(entity.MessageTypeRequest) {
		action = ratelimit.ActionCreateRequest
	}

	if allowed, wait := uc.rateLimiter.Allow(actor.ID, action); !allowed {
		log.Printf("Write Rate Limited: actor=%s action=%s must wait %v", actor.ID, action, wait)
		return errors.TooManyRequests("Too many messages", wait.Round(time.Second))
	}
	return nil
}

func actorID(actor *policy.Actor) string {
	if actor == nil {
		return "anonymous"
	}
	return actor.ID
}
