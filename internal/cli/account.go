package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"klassart-storefront/internal/domain"
	"klassart-storefront/internal/service/customer"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Example: `  storefront login --email ada@example.com --password secret
  KLASSART_PASSWORD=secret storefront login --email ada@example.com`,
		RunE: run(a, func(ctx context.Context, _ []string) error {
			if password == "" {
				password = os.Getenv("KLASSART_PASSWORD")
			}
			profile, err := a.customers.Login(ctx, email, password)
			if err != nil {
				return err
			}
			a.printf("Logged in as %s", profile.Email)
			return a.render(profile)
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (or KLASSART_PASSWORD)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: run(a, func(ctx context.Context, _ []string) error {
			if err := a.customers.Logout(ctx); err != nil {
				return err
			}
			a.printf("Logged out")
			return nil
		}),
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Revalidate the session and show the profile",
		RunE: run(a, func(ctx context.Context, _ []string) error {
			profile, err := a.customers.Authorize(ctx)
			if err != nil {
				return err
			}
			return a.render(profile)
		}),
	}
}

func newAccountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage profile, address and email verification",
	}
	cmd.AddCommand(newProfileCmd(a), newAddressCmd(a), newAvatarCmd(a), newOTPCmd(a))
	return cmd
}

func newProfileCmd(a *app) *cobra.Command {
	var in customer.ProfileUpdate
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update name, email and phone",
		RunE: run(a, func(ctx context.Context, _ []string) error {
			current, err := a.profile(ctx)
			if err != nil {
				return err
			}
			if in.Name == "" {
				in.Name = current.Name
			}
			if in.Email == "" {
				in.Email = current.Email
			}
			if in.Phone == "" {
				in.Phone = current.Phone
			}
			profile, err := a.customers.UpdateProfile(ctx, in)
			if err != nil {
				return err
			}
			return a.render(profile)
		}),
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "10 digit phone number")
	return cmd
}

func newAddressCmd(a *app) *cobra.Command {
	var addr domain.Address
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Save the delivery address",
		RunE: run(a, func(ctx context.Context, _ []string) error {
			profile, err := a.customers.UpdateAddress(ctx, addr)
			if err != nil {
				return err
			}
			return a.render(profile.Address)
		}),
	}
	cmd.Flags().StringVar(&addr.Line1, "line1", "", "Street address")
	cmd.Flags().StringVar(&addr.City, "city", "", "City")
	cmd.Flags().StringVar(&addr.Zip, "zip", "", "Postal code")
	cmd.Flags().StringVar(&addr.StateCode, "state", "", "State code")
	return cmd
}

func newAvatarCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "avatar <image>",
		Short: "Upload a profile picture",
		Args:  cobra.ExactArgs(1),
		RunE: run(a, func(ctx context.Context, args []string) error {
			if _, err := a.profile(ctx); err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			profile, err := a.customers.UploadAvatar(ctx, filepath.Base(args[0]), data)
			if err != nil {
				return err
			}
			return a.render(profile)
		}),
	}
}

func newOTPCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "otp",
		Short: "Verify the account email",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "send",
			Short: "Mail a verification code",
			RunE: run(a, func(ctx context.Context, _ []string) error {
				if _, err := a.profile(ctx); err != nil {
					return err
				}
				if err := a.customers.SendOTP(ctx); err != nil {
					return err
				}
				a.printf("Verification code sent")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "verify <code>",
			Short: "Confirm the verification code",
			Args:  cobra.ExactArgs(1),
			RunE: run(a, func(ctx context.Context, args []string) error {
				if _, err := a.profile(ctx); err != nil {
					return err
				}
				profile, err := a.customers.VerifyOTP(ctx, args[0])
				if err != nil {
					return err
				}
				return a.render(profile)
			}),
		},
	)
	return cmd
}
