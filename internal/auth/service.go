package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"ExamHallPlanner/internal/config"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuthService struct {
	EmailService *config.EmailService
}

type UserService struct {
	repo        *UserRepository
	authService *AuthService
}

func NewAuthService(emailService *config.EmailService) *AuthService {
	return &AuthService{EmailService: emailService}
}

func NewUserService(repo *UserRepository, authService *AuthService) *UserService {
	return &UserService{repo: repo, authService: authService}
}

func (s *UserService) RegisterUser(ctx context.Context, req RegisterRequest) error {
	existingUser, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if existingUser != nil {
		return errors.New("email already registered")
	}

	if req.Role == RoleStudent {
		if req.RollNo == "" {
			return errors.New("roll number is required for student registration")
		}
		existingStudent, err := s.repo.FindByRollNo(ctx, req.RollNo)
		if err != nil {
			return err
		}
		if existingStudent != nil {
			return errors.New("roll number already registered")
		}
	}

	hashPassword, err := HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := &User{
		ID:           primitive.NewObjectID(),
		RollNo:       req.RollNo,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashPassword,
		Role:         req.Role,
		Dept:         req.Dept,
		Year:         req.Year,
		Verified:     false,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return err
	}

	token, err := GenerateJWT(user.Name, user.Email, user.RollNo, user.Role, user.Dept, time.Hour*24)
	if err != nil {
		return err
	}
	return s.authService.SendVerificationEmail(user.Email, token)
}

func (s *UserService) AuthenticateUser(ctx context.Context, cred Credential) (string, error) {
	var user *User
	var err error

	// Students sign in with a roll number, staff and admins with an email.
	if strings.Contains(cred.Identifier, "@") {
		user, err = s.repo.FindByEmail(ctx, cred.Identifier)
	} else {
		user, err = s.repo.FindByRollNo(ctx, cred.Identifier)
	}
	if err != nil || user == nil || !CheckPasswordHash(cred.Password, user.PasswordHash) {
		return "", errors.New("invalid credentials")
	}
	if !user.Verified {
		return "", errors.New("email not verified")
	}

	token, err := GenerateJWT(user.Name, user.Email, user.RollNo, user.Role, user.Dept, time.Hour)
	if err != nil {
		return "", errors.New("token not generated")
	}
	return token, nil
}

func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	email, err := ValidateJWT(token)
	if err != nil {
		return errors.New("invalid token")
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil || user == nil {
		return errors.New("user not found")
	}
	user.Verified = true
	return s.repo.UpdateUser(ctx, user)
}

func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil || user == nil {
		return errors.New("user not found")
	}
	resetToken, err := GenerateJWT(user.Name, user.Email, user.RollNo, user.Role, user.Dept, time.Minute*15)
	if err != nil {
		return err
	}
	user.ResetToken = resetToken
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return err
	}

	if err := s.authService.SendResetPasswordEmail(email, resetToken); err != nil {
		log.Println("Email sending error:", err)
		return errors.New("failed to send reset password email")
	}
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	email, err := ValidateJWT(token)
	if err != nil {
		return errors.New("invalid token")
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil || user == nil {
		return errors.New("user not found")
	}
	hashPassword, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashPassword
	user.ResetToken = ""
	return s.repo.UpdateUser(ctx, user)
}

// FacultyMember is the directory entry exposed to the invigilator UI.
type FacultyMember struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Dept  string             `json:"dept"`
}

// ListFaculty returns staff and admin users as invigilator candidates.
func (s *UserService) ListFaculty(ctx context.Context) ([]FacultyMember, error) {
	users, err := s.repo.FindFaculty(ctx)
	if err != nil {
		return nil, err
	}
	members := make([]FacultyMember, 0, len(users))
	for _, user := range users {
		members = append(members, FacultyMember{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Dept:  user.Dept,
		})
	}
	return members, nil
}

func appBaseURL() string {
	base := os.Getenv("APP_BASE_URL")
	if base == "" {
		base = "http://localhost:5173"
	}
	return base
}

func (a *AuthService) SendVerificationEmail(email, token string) error {
	subject := "Email Verification"
	body := fmt.Sprintf("Click the link to verify your email: %s/verify-email?token=%s", appBaseURL(), token)
	return a.EmailService.SendEmail(email, subject, body)
}

func (a *AuthService) SendResetPasswordEmail(email, token string) error {
	subject := "Password Reset"
	body := fmt.Sprintf("Click the link to reset your password: %s/reset-password?token=%s", appBaseURL(), token)
	return a.EmailService.SendEmail(email, subject, body)
}
