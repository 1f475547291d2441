package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/mmynk/payhive/internal/auth"
	"github.com/mmynk/payhive/internal/ledger"
	"github.com/mmynk/payhive/internal/models"
	"github.com/mmynk/payhive/internal/storage"
	"github.com/mmynk/payhive/pkg/api"
)

// GroupService implements the Connect GroupService.
type GroupService struct {
	ledger *ledger.Ledger
	users  storage.UserStore
}

var _ api.GroupServiceHandler = (*GroupService)(nil)

// NewGroupService creates a GroupService. Members are resolved from users by email.
func NewGroupService(l *ledger.Ledger, users storage.UserStore) *GroupService {
	return &GroupService{ledger: l, users: users}
}

// CreateGroup creates a group with the caller as its first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberEmails),
	)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	creator, err := s.userByID(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	members := []models.Member{creator.AsMember(time.Time{})}
	for _, email := range req.Msg.MemberEmails {
		user, err := s.userByEmail(ctx, email)
		if err != nil {
			slog.Error("CreateGroup failed", "email", email, "error", err)
			return nil, toConnectError(err)
		}
		members = append(members, user.AsMember(time.Time{}))
	}

	group, err := s.ledger.CreateGroup(ctx, ledger.NewGroup{
		Name:        req.Msg.Name,
		Description: req.Msg.Description,
		CreatedBy:   userID,
		Members:     members,
	})
	if err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, _, err := memberGroup(ctx, s.ledger, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)
	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups returns the groups the caller belongs to.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	slog.Info("ListGroups request received")

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	groups, err := s.ledger.ListGroups(ctx)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Group, 0, len(groups))
	for _, group := range groups {
		if group.HasMember(userID) {
			out = append(out, toAPIGroup(group))
		}
	}

	slog.Info("ListGroups successful", "count", len(out))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// AddMember adds a registered user to a group the caller belongs to.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	slog.Info("AddMember request received", "group_id", req.Msg.GroupID, "email", req.Msg.Email)

	if _, _, err := memberGroup(ctx, s.ledger, req.Msg.GroupID); err != nil {
		return nil, toConnectError(err)
	}

	user, err := s.userByEmail(ctx, req.Msg.Email)
	if err != nil {
		return nil, toConnectError(err)
	}

	group, err := s.ledger.AddMember(ctx, req.Msg.GroupID, user.AsMember(time.Time{}))
	if err != nil {
		slog.Error("AddMember failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.AddMemberResponse{Group: toAPIGroup(group)}), nil
}

func (s *GroupService) userByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", auth.ErrUnknownUser, id)
	}
	return user, nil
}

func (s *GroupService) userByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: member email is required", ledger.ErrValidation)
	}
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: no account for %s", auth.ErrUnknownUser, email)
	}
	return user, nil
}
