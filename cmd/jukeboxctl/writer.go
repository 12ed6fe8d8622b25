package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/singlesjukebox/jukebox-server/internal/service"
)

func newCreateWriterCommand(ctx *commandContext) *cobra.Command {
	var req service.CreateWriterRequest

	cmd := &cobra.Command{
		Use:   "create-writer",
		Short: "Create a writer account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.ErrOrStderr(), func(a *app) error {
				w, err := a.writers.Create(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created writer %s (%s)\n", w.Username, w.ID)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Username, "username", "", "Login name")
	flags.StringVar(&req.Password, "password", "", "Password (at least 8 characters)")
	flags.StringVar(&req.FirstName, "first-name", "", "First name")
	flags.StringVar(&req.LastName, "last-name", "", "Last name")
	flags.StringVar(&req.Email, "email", "", "Email address")
	flags.BoolVar(&req.IsStaff, "staff", false, "Grant editor rights")
	flags.BoolVar(&req.IsAdmin, "admin", false, "Grant admin rights")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
