package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/projectk/projectk-backend/internal/config"
	"github.com/projectk/projectk-backend/internal/database"
	"github.com/projectk/projectk-backend/internal/logger"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/projectk/projectk-backend/internal/repository"
	"github.com/projectk/projectk-backend/internal/service"
)

const demoPassword = "projectk123"

var studentNames = []string{
	"Ana Souza", "Ben Carter", "Chloe Nguyen", "Diego Ramirez", "Emma Schmidt",
	"Farah Khan", "Gabriel Silva", "Hana Sato", "Isaac Mensah", "Julia Rossi",
	"Kenji Watanabe", "Lena Novak", "Mateo Garcia", "Nadia Haddad", "Omar Farouk",
	"Priya Patel", "Quinn Murphy", "Rosa Martinez", "Samuel Okafor", "Tara Singh",
}

func main() {
	students := flag.Int("students", 10, "Number of demo students to enroll (max 20)")
	flag.Parse()
	if *students < 0 || *students > len(studentNames) {
		fmt.Printf("Error: -students must be between 0 and %d\n", len(studentNames))
		return
	}

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	authService := service.NewAuthService(cfg, nil)
	userService := service.NewUserService(repository.NewUserRepository(pool), authService)
	classService := service.NewClassService(repository.NewClassRepository(pool))

	fmt.Println("=== Seeding Project K demo data ===")

	teacher, err := ensureUser(ctx, userService, &model.RegisterRequest{
		Email:      "teacher@projectk.dev",
		Password:   demoPassword,
		Name:       "Demo Teacher",
		UserType:   model.UserTypeTeacher,
		SchoolName: "Project K Academy",
		Subjects:   []model.Subject{model.SubjectMath, model.SubjectPhysics},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed teacher")
	}
	fmt.Printf("Teacher: %s (%s)\n", teacher.Email, teacher.ID)

	// Reuse the teacher's first class on reruns.
	classes, err := classService.ListByTeacher(ctx, teacher.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list classes")
	}
	var joinCode string
	if len(classes) > 0 {
		joinCode = classes[0].JoinCode
		fmt.Printf("Found existing class %q with join code %s\n", classes[0].Name, joinCode)
	} else {
		class, err := classService.Create(ctx, teacher.ID, &model.CreateClassRequest{
			Name:       "Algebra I",
			Subject:    model.SubjectMath,
			GradeLevel: "9th",
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create class")
		}
		joinCode = class.JoinCode
		fmt.Printf("Created class %q with join code %s\n", class.Name, joinCode)
	}

	enrolled := 0
	for i := 0; i < *students; i++ {
		student, err := ensureUser(ctx, userService, &model.RegisterRequest{
			Email:      fmt.Sprintf("student%02d@projectk.dev", i+1),
			Password:   demoPassword,
			Name:       studentNames[i],
			UserType:   model.UserTypeStudent,
			GradeLevel: "9th",
			Subjects:   []model.Subject{model.SubjectMath},
		})
		if err != nil {
			fmt.Printf("Error creating student %s: %v\n", studentNames[i], err)
			continue
		}

		if _, err := classService.Join(ctx, student.ID, joinCode); err != nil && !errors.Is(err, service.ErrAlreadyEnrolled) {
			fmt.Printf("Error enrolling %s: %v\n", student.Email, err)
			continue
		}
		enrolled++
	}

	fmt.Printf("\nSeed completed! %d/%d students enrolled. Password for every demo account: %s\n", enrolled, *students, demoPassword)
}

// ensureUser registers req, or returns the existing account with that email.
func ensureUser(ctx context.Context, users *service.UserService, req *model.RegisterRequest) (*model.User, error) {
	u, err := users.Register(ctx, req)
	if errors.Is(err, service.ErrEmailTaken) {
		return users.GetByEmail(ctx, req.Email)
	}
	return u, err
}
