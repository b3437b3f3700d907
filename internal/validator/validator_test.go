package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindBody(t *testing.T, body string, dst interface{}) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	Setup()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return Bind(c, dst)
}

func TestBindReportsTypeMismatchPerField(t *testing.T) {
	var req model.GeneratePracticeRequest
	fields := bindBody(t, `{"subject":"math","topic":42,"difficulty":"easy"}`, &req)

	require.NotNil(t, fields)
	assert.Equal(t, "must be of type string, got number", fields["topic"])
	assert.Len(t, fields, 1)
}

func TestBindReportsEveryFailedRule(t *testing.T) {
	var req model.GeneratePracticeRequest
	fields := bindBody(t, `{"subject":"astrology","difficulty":"brutal","question_count":2}`, &req)

	require.NotNil(t, fields)
	assert.Contains(t, fields["subject"], "subject must be one of math")
	assert.Equal(t, "topic is a required field", fields["topic"])
	assert.Contains(t, fields["difficulty"], "difficulty must be one of")
	assert.Contains(t, fields["question_count"], "question_count must be 5 or greater")
}

func TestBindSubjectListElements(t *testing.T) {
	var req model.RegisterRequest
	fields := bindBody(t, `{"email":"a@b.co","password":"secret1","name":"Ana","user_type":"student","subjects":["math","cooking"]}`, &req)

	require.NotNil(t, fields)
	assert.Contains(t, fields, "subjects[1]")
	assert.NotContains(t, fields, "subjects[0]")
}

func TestBindBodyErrors(t *testing.T) {
	cases := map[string]string{
		"":           "request body is required",
		`{"subject":`: "request body is truncated",
		`[1,2]`:      "must be a JSON object",
	}
	for body, want := range cases {
		var req model.GeneratePracticeRequest
		fields := bindBody(t, body, &req)
		require.NotNil(t, fields, "body %q", body)
		assert.Equal(t, want, fields[BodyField], "body %q", body)
	}

	var req model.GeneratePracticeRequest
	fields := bindBody(t, `{"subject" "math"}`, &req)
	assert.Contains(t, fields[BodyField], "malformed JSON")
}

func TestBindValidPayload(t *testing.T) {
	var req model.GeneratePracticeRequest
	fields := bindBody(t, `{"subject":"physics","topic":"Kinematics","difficulty":"medium","question_count":5}`, &req)

	assert.Nil(t, fields)
	assert.Equal(t, model.SubjectPhysics, req.Subject)
	assert.Equal(t, 5, req.QuestionCount)
}
