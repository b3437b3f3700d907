package service

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var joinCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestCreateClassRetriesJoinCodeCollision(t *testing.T) {
	f := newFixture(t, nil)
	teacher := f.register(t, "ct1@example.com", model.UserTypeTeacher)
	f.stores.Classes.FailCodes = 2

	c, err := f.classes.Create(context.Background(), teacher.ID, &model.CreateClassRequest{
		Name: "Biology 9A", Subject: model.SubjectBiology, GradeLevel: "9th",
	})
	require.NoError(t, err)
	assert.Regexp(t, joinCodePattern, c.JoinCode)
	assert.Equal(t, teacher.ID, c.TeacherID)
	assert.Empty(t, c.StudentIDs)
}

func TestCreateClassGivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newFixture(t, nil)
	f.stores.Classes.FailCodes = joinCodeAttempts

	_, err := f.classes.Create(context.Background(), uuid.New(), &model.CreateClassRequest{
		Name: "Doomed", Subject: model.SubjectMath, GradeLevel: "9th",
	})
	assert.Error(t, err)
}

func TestJoinClass(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	teacher := f.register(t, "ct2@example.com", model.UserTypeTeacher)
	student := f.register(t, "cs2@example.com", model.UserTypeStudent)

	c, err := f.classes.Create(ctx, teacher.ID, &model.CreateClassRequest{
		Name: "Geo", Subject: model.SubjectGeography, GradeLevel: "8th",
	})
	require.NoError(t, err)

	_, err = f.classes.Join(ctx, student.ID, "ZZZZZ1")
	assert.ErrorIs(t, err, ErrNotFound)

	joined, err := f.classes.Join(ctx, student.ID, " "+strings.ToLower(c.JoinCode)+" ")
	require.NoError(t, err)
	assert.Equal(t, c.ID, joined.ID)
	assert.Equal(t, 1, joined.StudentCount)

	_, err = f.classes.Join(ctx, student.ID, c.JoinCode)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)

	mine, err := f.classes.ListByStudent(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Geo", mine[0].Name)

	students, err := f.classes.ListStudents(ctx, teacher.ID, c.ID)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, student.ID, students[0].ID)
}

func TestTeacherCannotSeeAnotherTeachersClass(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.register(t, "ct3@example.com", model.UserTypeTeacher)
	other := f.register(t, "ct4@example.com", model.UserTypeTeacher)

	c, err := f.classes.Create(ctx, owner.ID, &model.CreateClassRequest{
		Name: "Chem", Subject: model.SubjectChemistry, GradeLevel: "11th",
	})
	require.NoError(t, err)

	_, err = f.classes.GetForTeacher(ctx, other.ID, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.classes.ListStudents(ctx, other.ID, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := f.classes.ListByTeacher(ctx, other.ID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestGenerateJoinCodeAlphabet(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := generateJoinCode()
		require.NoError(t, err)
		assert.Regexp(t, joinCodePattern, code)
	}
}
