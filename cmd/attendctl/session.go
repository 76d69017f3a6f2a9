package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"absensi/internal/attendance"
	"absensi/internal/qr"
)

func (c *cli) sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or clear the current session",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the logged in user",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				u, ok := c.state.CurrentUser()
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "no active session")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", u.ID, u.Name, u.Role)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Log the current user out, including on a running api server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := c.state.Logout(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "session cleared")
				return nil
			},
		},
	)
	return cmd
}

func (c *cli) qrCmd() *cobra.Command {
	var (
		out  string
		size int
	)
	cmd := &cobra.Command{
		Use:   "qr <user-id>",
		Short: "Write a user's qr code as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, ok := c.state.User(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", attendance.ErrUserNotFound, args[0])
			}
			png, err := qr.Encode(u.QRCode, size)
			if err != nil {
				return err
			}
			if out == "" {
				out = u.ID + ".png"
			}
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return err
			}
			c.logger.Debug("qr written", zap.String("user_id", u.ID), zap.String("path", out))
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <user-id>.png)")
	cmd.Flags().IntVar(&size, "size", qr.DefaultSize, "image size in pixels")
	return cmd
}
