package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/apperrors"
	"github.com/agentforge-io/agent-builder/pkg/models"
	"github.com/agentforge-io/agent-builder/pkg/plans"
	"github.com/agentforge-io/agent-builder/pkg/repositories"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Administer user plan profiles",
}

var setRoleCmd = &cobra.Command{
	Use:   "set-role <user_id> <role>",
	Short: "Assign a plan role, creating the profile if needed",
	Long:  "Sets the role and that plan's default usage cap. Existing usage counts are kept.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user_id %q: %w", args[0], err)
		}
		plan, ok := plans.Lookup(models.Role(args[1]))
		if !ok {
			return fmt.Errorf("%w: %q", apperrors.ErrInvalidRole, args[1])
		}

		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		db, err := openDatabase(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		profileRepo := repositories.NewProfileRepository(db)
		profile, err := profileRepo.UpdateRole(cmd.Context(), userID, plan.Role, plan.MaxUsage)
		if errors.Is(err, apperrors.ErrNotFound) {
			profile, err = profileRepo.Create(cmd.Context(), &models.Profile{
				ID:       userID,
				Role:     plan.Role,
				MaxUsage: plan.MaxUsage,
			})
		}
		if err != nil {
			return fmt.Errorf("failed to set role: %w", err)
		}

		logger.Info("Profile role updated",
			zap.String("user_id", userID.String()),
			zap.String("role", string(profile.Role)),
			zap.Int("max_usage", profile.MaxUsage))
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tmax_usage=%d\tusage=%d\n",
			profile.ID, profile.Role, profile.MaxUsage, profile.UsageCount)
		return nil
	},
}

func init() {
	profilesCmd.AddCommand(setRoleCmd)
}
