package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"questlog-backend/pkg/apperror"
	"questlog-backend/pkg/events"
	"questlog-backend/pkg/mailer"
)

const resetTokenBytes = 20

func (u *authUsecase) ForgotPassword(ctx context.Context, email, baseURL string) error {
	user, err := u.userRepo.FindByEmailDigest(ctx, u.cipher.Digest(email))
	if err != nil {
		return apperror.Transient("failed to look up user", err)
	}
	if user == nil {
		return apperror.NotFound("User not found")
	}

	resetToken, err := randomHex(resetTokenBytes)
	if err != nil {
		return apperror.Transient("failed to generate reset token", err)
	}
	expires := u.now().Add(u.opts.ResetTokenTTL)
	if err := u.userRepo.Update(ctx, user.ID, map[string]interface{}{
		"reset_password_token":   resetToken,
		"reset_password_expires": expires,
	}); err != nil {
		return apperror.Transient("failed to store reset token", err)
	}

	link := strings.TrimRight(baseURL, "/") + "/auth/reset-password/" + resetToken
	msg := mailer.Message{
		To:      u.cipher.DecryptString(user.Email),
		From:    u.opts.MailFrom,
		Subject: "Password Reset",
		Text: fmt.Sprintf("You are receiving this because you (or someone else) have requested a password reset.\n\n"+
			"%s\n\n"+
			"If you did not request this, please ignore this email.\n", link),
	}
	if err := u.mail.Send(ctx, msg); err != nil {
		log.Printf("[Auth] Error sending reset email for user %s: %v", user.ID, err)
		return apperror.Transient("Error sending password reset email", err)
	}
	return nil
}

func (u *authUsecase) ValidateResetToken(ctx context.Context, resetToken string) error {
	if resetToken == "" {
		return apperror.Invalid("Invalid or expired token")
	}
	user, err := u.userRepo.FindByResetToken(ctx, resetToken, u.now())
	if err != nil {
		return apperror.Transient("failed to look up reset token", err)
	}
	if user == nil {
		return apperror.Invalid("Invalid or expired token")
	}
	return nil
}

// ResetPassword also signs the account out everywhere: the stored refresh
// token and every session are dropped.
func (u *authUsecase) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" {
		return apperror.Invalid("Invalid or expired token")
	}
	user, err := u.userRepo.FindByResetToken(ctx, resetToken, u.now())
	if err != nil {
		return apperror.Transient("failed to look up reset token", err)
	}
	if user == nil {
		return apperror.Invalid("Invalid or expired token")
	}

	hashed, err := u.hasher.Hash(newPassword)
	if err != nil {
		return apperror.Transient("Error resetting password", err)
	}
	if err := u.userRepo.Update(ctx, user.ID, map[string]interface{}{
		"password_hash":          hashed,
		"reset_password_token":   nil,
		"reset_password_expires": nil,
		"refresh_token":          nil,
	}); err != nil {
		return apperror.Transient("Error resetting password", err)
	}
	if err := u.sessionRepo.DeleteByUser(ctx, user.ID); err != nil {
		log.Printf("[Auth] Failed to drop sessions for user %s after reset: %v", user.ID, err)
	}

	log.Printf("[Auth] Password reset for user %s", user.ID)
	u.notifier.Notify(ctx, events.KindPasswordReset, user.ID, nil)
	return nil
}
