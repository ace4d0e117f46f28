package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/thomlank/QuikTik/internal/api/dto"
	"github.com/thomlank/QuikTik/internal/auth"
	"github.com/thomlank/QuikTik/internal/domain"
	"github.com/thomlank/QuikTik/internal/service"
	apperrors "github.com/thomlank/QuikTik/pkg/util"
)

// TeamsHandler manages team and membership endpoints.
type TeamsHandler struct {
	service *service.MembershipService
}

// NewTeamsHandler constructs handler.
func NewTeamsHandler(membershipService *service.MembershipService) *TeamsHandler {
	return &TeamsHandler{service: membershipService}
}

// List GET /teams.
func (h *TeamsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	teams, err := h.service.ListTeams(c.UserContext())
	if err != nil {
		return err
	}
	includeFlags := principal.User.IsAdmin()
	items := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, teamResponse(&teams[i], includeFlags))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /teams/:id.
func (h *TeamsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	team, err := h.service.GetTeam(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teamResponse(team, principal.User.IsAdmin())})
}

// Create POST /teams.
func (h *TeamsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	team, err := h.service.CreateTeam(c.UserContext(), principal.User, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": teamResponse(team, principal.User.IsAdmin())})
}

// Update PATCH /teams/:id.
func (h *TeamsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.TeamUpdateInput{
		Name:              req.Name,
		CanViewAllTickets: req.CanViewAllTickets,
		CanAssignTickets:  req.CanAssignTickets,
		CanCloseTickets:   req.CanCloseTickets,
		CanDeleteTickets:  req.CanDeleteTickets,
	}
	team, err := h.service.UpdateTeam(c.UserContext(), principal.User, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teamResponse(team, principal.User.IsAdmin())})
}

// Delete DELETE /teams/:id.
func (h *TeamsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.DeleteTeam(c.UserContext(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListMembers GET /teams/:id/members.
func (h *TeamsHandler) ListMembers(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	members, err := h.service.ListMembers(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.MembershipResponse, 0, len(members))
	for i := range members {
		items = append(items, membershipResponse(&members[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddMember POST /teams/:id/members.
func (h *TeamsHandler) AddMember(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AddMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" {
		return apperrors.NewValidationError("user_id required", nil)
	}
	role := req.Role
	if role == "" {
		role = domain.TeamRoleMember
	}
	membership, err := h.service.AddMember(c.UserContext(), principal.User, c.Params("id"), req.UserID, role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": membershipResponse(membership)})
}

// RemoveMember DELETE /memberships/:id.
func (h *TeamsHandler) RemoveMember(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.RemoveMember(c.UserContext(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// SetMemberRole PATCH /memberships/:id.
func (h *TeamsHandler) SetMemberRole(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.SetMemberRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	membership, err := h.service.SetMemberRole(c.UserContext(), principal.User, c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": membershipResponse(membership)})
}
