package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/projectk/projectk-backend/internal/config"
	"github.com/projectk/projectk-backend/internal/database"
	"github.com/projectk/projectk-backend/internal/logger"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/projectk/projectk-backend/internal/repository"
	"github.com/projectk/projectk-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	// Account creation never issues a token, so no session store is needed.
	authService := service.NewAuthService(cfg, nil)
	userService := service.NewUserService(repository.NewUserRepository(pool), authService)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New User ===")

	// Role
	fmt.Print("Enter Role (teacher/student, default teacher): ")
	role, _ := reader.ReadString('\n')
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = string(model.UserTypeTeacher)
	}
	if role != string(model.UserTypeTeacher) && role != string(model.UserTypeStudent) {
		fmt.Println("Error: Role must be teacher or student")
		return
	}

	// Name
	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		fmt.Println("Error: Name must be at least 2 characters")
		return
	}

	// Email
	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		fmt.Println("Error: A valid email is required")
		return
	}

	// Grade level
	fmt.Print("Enter Grade Level (optional): ")
	grade, _ := reader.ReadString('\n')
	grade = strings.TrimSpace(grade)

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	user, err := userService.Register(ctx, &model.RegisterRequest{
		Email:      email,
		Password:   password,
		Name:       name,
		UserType:   model.UserType(role),
		GradeLevel: grade,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			fmt.Printf("Error: %s is already registered\n", email)
			return
		}
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	fmt.Printf("\nSuccess! %s '%s' (%s) created with ID: %s\n", user.UserType, user.Name, user.Email, user.ID)
}
