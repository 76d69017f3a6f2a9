package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"absensi/internal/attendance"
)

func (c *cli) registerCmd() *cobra.Command {
	var in struct {
		name, role, class, subject string
	}
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a student or teacher",
		Example: `  attendctl register --name "Ahmad Fauzi" --role student --class 7A
  attendctl register --name "Bu Siti" --role teacher --subject Matematika`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			role := attendance.Role(in.role)
			if !role.Valid() {
				return fmt.Errorf("%w: %q", attendance.ErrInvalidRole, in.role)
			}
			nu := attendance.NewUser{Name: in.name, Role: role}
			if role == attendance.RoleStudent {
				nu.Class = in.class
			} else {
				nu.Subject = in.subject
			}

			id, err := c.state.RegisterUser(cmd.Context(), nu)
			if err != nil {
				return err
			}
			u, _ := c.state.User(id)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", u.ID, u.QRCode)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.name, "name", "", "full name")
	cmd.Flags().StringVar(&in.role, "role", string(attendance.RoleStudent), "student or teacher")
	cmd.Flags().StringVar(&in.class, "class", "", "class, students only")
	cmd.Flags().StringVar(&in.subject, "subject", "", "subject taught, teachers only")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (c *cli) usersCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tROLE\tCLASS/SUBJECT\tQR CODE")
			for _, u := range c.state.Users() {
				if role != "" && string(u.Role) != role {
					continue
				}
				detail := u.Class
				if u.Role == attendance.RoleTeacher {
					detail = u.Subject
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Role, dash(detail), u.QRCode)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "only list users with this role")
	return cmd
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
