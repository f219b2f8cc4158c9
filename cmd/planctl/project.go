package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"planboard.app/server/internal/http/dto"
	"planboard.app/server/internal/model"
)

func projectsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects in the current workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			ws := a.store.CurrentWorkspace()
			if ws == nil {
				return fmt.Errorf("no workspace selected")
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tPRIORITY\tPROGRESS\tTASKS")
			for _, p := range ws.Projects {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d%%\t%d\n", p.ID, p.Name, p.Status, p.Priority, p.Progress, len(p.Tasks))
			}
			return tw.Flush()
		},
	}
}

func projectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Create and edit projects",
	}
	cmd.AddCommand(projectCreateCmd(a), projectUpdateCmd(a), projectAddMemberCmd(a))
	return cmd
}

func projectCreateCmd(a *app) *cobra.Command {
	var (
		req              dto.CreateProjectRequest
		description      string
		status, priority string
		start, end       string
		progress         int
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project in the current workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			if req.WorkspaceID == "" {
				id, err := a.currentWorkspaceID()
				if err != nil {
					return err
				}
				req.WorkspaceID = id
			}

			flags := cmd.Flags()
			if flags.Changed("description") {
				req.Description = &description
			}
			req.Status = model.ProjectStatus(strings.ToUpper(status))
			req.Priority = model.Priority(strings.ToUpper(priority))
			if flags.Changed("progress") {
				req.Progress = &progress
			}
			var err error
			if req.StartDate, err = optionalDate(start); err != nil {
				return err
			}
			if req.EndDate, err = optionalDate(end); err != nil {
				return err
			}

			project, err := a.api.CreateProject(ctx, req)
			if err != nil {
				return err
			}
			if err := a.store.UpsertProject(*project); err != nil {
				return err
			}
			fmt.Printf("Created project %s (%s)\n", project.Name, project.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Name, "name", "", "project name")
	f.StringVar(&req.TeamLead, "lead", "", "team lead email")
	f.StringVar(&req.WorkspaceID, "workspace", "", "workspace id (defaults to the current one)")
	f.StringVar(&description, "description", "", "description")
	f.StringVar(&status, "status", "", "PLANNING, ACTIVE, ON_HOLD, COMPLETED or CANCELLED")
	f.StringVar(&priority, "priority", "", "LOW, MEDIUM or HIGH")
	f.StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	f.StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	f.StringSliceVar(&req.TeamMembers, "member", nil, "member email, repeatable")
	f.IntVar(&progress, "progress", 0, "progress percentage")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("lead")
	return cmd
}

func projectUpdateCmd(a *app) *cobra.Command {
	var (
		name, description string
		status, priority  string
		start, end        string
		progress          int
	)
	cmd := &cobra.Command{
		Use:   "update <projectId>",
		Short: "Update project fields; pass --start none to clear a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			current, ok := a.store.Project(args[0])
			if !ok {
				return fmt.Errorf("unknown project %s", args[0])
			}

			req := dto.UpdateProjectRequest{ID: current.ID, WorkspaceID: current.WorkspaceID}
			flags := cmd.Flags()
			if flags.Changed("name") {
				req.Name = &name
			}
			if flags.Changed("description") {
				req.Description = &description
			}
			if flags.Changed("status") {
				s := model.ProjectStatus(strings.ToUpper(status))
				req.Status = &s
			}
			if flags.Changed("priority") {
				p := model.Priority(strings.ToUpper(priority))
				req.Priority = &p
			}
			if flags.Changed("progress") {
				req.Progress = &progress
			}
			var err error
			if flags.Changed("start") {
				if req.StartDate, err = nullableDate(start); err != nil {
					return err
				}
			}
			if flags.Changed("end") {
				if req.EndDate, err = nullableDate(end); err != nil {
					return err
				}
			}

			project, err := a.api.UpdateProject(ctx, req)
			if err != nil {
				return err
			}
			if err := a.store.UpsertProject(*project); err != nil {
				return err
			}
			fmt.Printf("Updated project %s\n", project.Name)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "project name")
	f.StringVar(&description, "description", "", "description")
	f.StringVar(&status, "status", "", "project status")
	f.StringVar(&priority, "priority", "", "LOW, MEDIUM or HIGH")
	f.StringVar(&start, "start", "", "start date, or none")
	f.StringVar(&end, "end", "", "end date, or none")
	f.IntVar(&progress, "progress", 0, "progress percentage")
	return cmd
}

func projectAddMemberCmd(a *app) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "add-member <projectId>",
		Short: "Add a workspace member to a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			member, err := a.api.AddProjectMember(ctx, args[0], email)
			if err != nil {
				return err
			}
			if project, ok := a.store.Project(args[0]); ok {
				project.Members = append(project.Members, *member)
				project.Tasks = nil
				if err := a.store.UpsertProject(project); err != nil {
					return err
				}
			}
			fmt.Printf("Added %s to project %s\n", email, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "member email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func optionalDate(s string) (*dto.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := dto.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// nullableDate maps "none" to an explicit null.
func nullableDate(s string) (dto.NullableDate, error) {
	if s == "" || strings.EqualFold(s, "none") {
		return dto.NullableDate{Set: true}, nil
	}
	d, err := dto.ParseDate(s)
	if err != nil {
		return dto.NullableDate{}, err
	}
	return dto.NullableDate{Set: true, Value: d.Ptr()}, nil
}
