package main

import (
	"context"

	"github.com/safeschool/drillready/core"
	"github.com/safeschool/drillready/core/account"
)

// createAdmin registers the singleton admin account for a school. The same
// uniqueness rules as API registration apply.
func (cli *commandLine) createAdmin(name, email, schoolID, pwd string) error {
	ctx := context.Background()

	na := account.NewAccount{
		Name:     core.CleanString(name),
		Email:    core.CleanString(email, true /* lower */),
		Password: pwd,
		Role:     account.RoleAdmin,
		SchoolID: core.CleanString(schoolID),
	}
	if err := cli.acctSvc.CheckUniqueness(ctx, na); err != nil {
		return err
	}
	_, err := cli.acctSvc.Register(ctx, na)
	return err
}
