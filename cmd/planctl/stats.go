package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"planboard.app/server/internal/model"
)

// workspaceStats is the dashboard summary for one workspace.
type workspaceStats struct {
	TotalProjects     int
	ActiveProjects    int
	CompletedProjects int
	TotalTasks        int
	CompletedTasks    int
	MyTasks           int
	OverdueTasks      int
}

// computeStats counts over every project and task in ws. A task is overdue
// when its due date is before now and it is not DONE.
func computeStats(ws *model.Workspace, userID string, now time.Time) workspaceStats {
	var st workspaceStats
	if ws == nil {
		return st
	}
	for _, p := range ws.Projects {
		st.TotalProjects++
		switch p.Status {
		case model.ProjectStatusActive:
			st.ActiveProjects++
		case model.ProjectStatusCompleted:
			st.CompletedProjects++
		}
		for _, t := range p.Tasks {
			st.TotalTasks++
			if t.Status == model.TaskStatusDone {
				st.CompletedTasks++
			} else if !t.DueDate.IsZero() && t.DueDate.Before(now) {
				st.OverdueTasks++
			}
			if userID != "" && t.AssigneeID != nil && *t.AssigneeID == userID {
				st.MyTasks++
			}
		}
	}
	return st
}

func statsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize projects and tasks in the current workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			ws := a.store.CurrentWorkspace()
			if ws == nil {
				return errors.New("no workspace selected; create one with `planctl workspace create`")
			}
			me, err := a.callerID()
			if err != nil {
				return err
			}

			st := computeStats(ws, me, time.Now())
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Workspace\t%s\n", ws.Name)
			fmt.Fprintf(tw, "Projects\t%d\n", st.TotalProjects)
			fmt.Fprintf(tw, "  active\t%d\n", st.ActiveProjects)
			fmt.Fprintf(tw, "  completed\t%d\n", st.CompletedProjects)
			fmt.Fprintf(tw, "Tasks\t%d\n", st.TotalTasks)
			fmt.Fprintf(tw, "  completed\t%d\n", st.CompletedTasks)
			fmt.Fprintf(tw, "  mine\t%d\n", st.MyTasks)
			fmt.Fprintf(tw, "  overdue\t%d\n", st.OverdueTasks)
			return tw.Flush()
		},
	}
}
