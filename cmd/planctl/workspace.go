package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"planboard.app/server/internal/http/dto"
	"planboard.app/server/internal/model"
)

func workspacesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "workspaces",
		Short: "List your workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadWithStatus(cmd.Context()); err != nil {
				return err
			}
			current := a.store.CurrentWorkspaceID()
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\tID\tNAME\tPROJECTS\tMEMBERS")
			for _, ws := range a.store.Workspaces() {
				marker := ""
				if ws.ID == current {
					marker = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", marker, ws.ID, ws.Name, len(ws.Projects), len(ws.Members))
			}
			return tw.Flush()
		},
	}
}

func useCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "use <workspaceId>",
		Short: "Select the current workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadWithStatus(cmd.Context()); err != nil {
				return err
			}
			if err := a.store.SelectWorkspace(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Now using workspace %s\n", a.store.CurrentWorkspace().Name)
			return nil
		},
	}
}

func workspaceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Manage workspaces",
	}

	var req dto.CreateWorkspaceRequest
	var wait time.Duration
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a workspace and wait for it to be provisioned",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			id, err := a.api.CreateWorkspace(ctx, req)
			if err != nil {
				return err
			}
			fmt.Printf("Workspace creation started (%s)\n", id)

			if err := a.waitForWorkspace(ctx, id, wait); err != nil {
				return err
			}
			if err := a.store.SelectWorkspace(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Workspace %s is ready and selected\n", req.Name)
			return nil
		},
	}
	create.Flags().StringVar(&req.Name, "name", "", "workspace name")
	create.Flags().StringVar(&req.Image, "image", "", "image URL")
	create.Flags().DurationVar(&wait, "wait", 15*time.Second, "how long to wait for provisioning")
	_ = create.MarkFlagRequired("name")

	cmd.AddCommand(create)
	return cmd
}

func memberCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Add or invite workspace members",
	}

	var req dto.AddMemberRequest
	var role string
	bind := func(c *cobra.Command) {
		c.Flags().StringVar(&req.Email, "email", "", "member email")
		c.Flags().StringVar(&role, "role", string(model.WorkspaceRoleMember), "ADMIN or MEMBER")
		c.Flags().StringVar(&req.WorkspaceID, "workspace", "", "workspace id (defaults to the current one)")
		c.Flags().StringVar(&req.Message, "message", "", "optional note for the invitee")
		_ = c.MarkFlagRequired("email")
	}
	prepare := func(c *cobra.Command) error {
		if err := a.load(c.Context()); err != nil {
			return err
		}
		req.Role = model.WorkspaceRole(role)
		if !req.Role.Valid() {
			return fmt.Errorf("invalid role %q", role)
		}
		if req.WorkspaceID == "" {
			id, err := a.currentWorkspaceID()
			if err != nil {
				return err
			}
			req.WorkspaceID = id
		}
		return nil
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add an existing user to a workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := prepare(cmd); err != nil {
				return err
			}
			member, err := a.api.AddWorkspaceMember(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Printf("Added %s as %s\n", req.Email, member.Role)
			a.refreshAfterChange()
			return nil
		},
	}
	bind(add)

	invite := &cobra.Command{
		Use:   "invite",
		Short: "Invite a user to a workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := prepare(cmd); err != nil {
				return err
			}
			res, err := a.api.InviteWorkspaceMember(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s to %s\n", res.Message, res.Email, res.Workspace)
			a.refreshAfterChange()
			return nil
		},
	}
	bind(invite)

	cmd.AddCommand(add, invite)
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget cached state and the selected workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Local state cleared")
			return nil
		},
	}
}

// watchCmd polls the caller's memberships and refetches the workspace list
// whenever the set changes, e.g. after being added to a workspace elsewhere.
func watchCmd(a *app) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the local workspace cache in step with your memberships",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.loadWithStatus(ctx); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "watching %d workspaces every %s\n", len(a.store.WorkspaceIDs()), interval)

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}

				ids, err := a.api.ListWorkspaceMemberships(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					slog.WarnContext(ctx, "listing memberships failed", "error", err)
					continue
				}
				if !a.refresher.ObserveOrganizations(ids) {
					continue
				}
				a.refresher.Wait()
				fmt.Printf("%s workspaces changed: %s\n",
					time.Now().Format(time.TimeOnly), strings.Join(a.store.WorkspaceIDs(), ", "))
			}
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "how often to check memberships")
	return cmd
}
