package auth

import "go.mongodb.org/mongo-driver/bson/primitive"

// User roles. Staff users double as the faculty directory that supplies
// invigilator candidates.
const (
	RoleAdmin   = "admin"
	RoleStaff   = "staff"
	RoleStudent = "student"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	RollNo       string             `bson:"roll_no,omitempty"` // Students only
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	Dept         string             `bson:"dept"`
	Year         int                `bson:"year,omitempty"` // Students only
	Verified     bool               `bson:"verified"`
	ResetToken   string             `bson:"reset_token,omitempty"`
}

type RegisterRequest struct {
	RollNo   string `json:"rollNo"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin staff student"`
	Dept     string `json:"dept"`
	Year     int    `json:"year" validate:"omitempty,min=1,max=4"`
}

type Credential struct {
	Identifier string `json:"identifier" validate:"required"` // Email for staff/admin, roll number for students
	Password   string `json:"password" validate:"required"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}
