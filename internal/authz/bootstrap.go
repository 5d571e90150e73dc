package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵，角色名与账户角色一致
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role:     "admin",
			Inherits: []string{"merchant"},
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
		},
		{
			Role: "merchant",
			Policies: []Policy{
				{Object: "/merchants/me", Action: "*"},
				{Object: "/merchants/me/*", Action: "*"},
				{Object: "/gift-cards", Action: "POST"},
				{Object: "/gift-cards/mine", Action: "GET"},
				{Object: "/gift-cards/:id", Action: "PUT"},
				{Object: "/gift-cards/:id", Action: "DELETE"},
				{Object: "/purchases/redeem", Action: "POST"},
				{Object: "/purchases/:id/cancel", Action: "POST"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}

		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}

	return nil
}
