package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"lumos/models"
	"lumos/testutil"
)

const catalogYAML = `
categories:
  - name: Web Development
    description: Build for the browser
  - name: Data Science
courses:
  - title: HTML Fundamentals
    description: Tags, forms and semantics
    category: Web Development
    instructor: teacher@example.com
    price: "19.99"
    difficulty: beginner
    published: true
    materials:
      - title: Welcome
        type: video
        file_url: https://cdn.example.com/welcome.mp4
        order: 1
        free: true
      - title: Cheat Sheet
        type: pdf
        file_url: https://cdn.example.com/cheat.pdf
        order: 2
        price: "2.50"
  - title: Pandas 101
    description: Dataframes from scratch
    category: Data Science
    instructor: TEACHER@example.com
    difficulty: intermediate
`

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	db := testutil.SetupDB(t)
	out := &bytes.Buffer{}
	return &commandLine{db: db, out: out}, out
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
}

func Test_commandLine_usage(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no command", args: nil, wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "create-admin without flags", args: []string{"create-admin"}, wantErr: errHelp},
		{name: "create-admin without email", args: []string{"create-admin", "-username", "root"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"lumosAdmin"}, tt.args...))
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func Test_commandLine_setupAdmin(t *testing.T) {
	cli, out := setup(t)
	t.Setenv("ADMIN_PASSWORD", "")

	require.NoError(t, cli.run([]string{"lumosAdmin", "setup-admin"}))
	assert.Contains(t, out.String(), "Superuser admin created.")

	var admin models.User
	require.NoError(t, cli.db.Where("username = ?", "admin").First(&admin).Error)
	assert.Equal(t, "admin@lumoslearning.com", admin.Email)
	assert.True(t, admin.IsSuperuser)
	assert.True(t, admin.IsAdmin())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("admin123")))

	require.NoError(t, cli.run([]string{"lumosAdmin", "setup-admin"}))
	assert.Contains(t, out.String(), "An admin already exists")

	var count int64
	cli.db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func Test_commandLine_createAdmin(t *testing.T) {
	cli, _ := setup(t)
	orig := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte("s3cret-pass"), nil }
	t.Cleanup(func() { readPasswordFunc = orig })

	require.NoError(t, cli.run([]string{"lumosAdmin", "create-admin", "-username", "root", "-email", "Root@Example.com"}))

	var admin models.User
	require.NoError(t, cli.db.Where("email = ?", "root@example.com").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("s3cret-pass")))

	err := cli.run([]string{"lumosAdmin", "create-admin", "-username", "root", "-email", "other@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	readPasswordFunc = func(int) ([]byte, error) { return nil, nil }
	err = cli.run([]string{"lumosAdmin", "create-admin", "-username", "root2", "-email", "root2@example.com"})
	assert.Equal(t, errHelp, err)
}

func Test_commandLine_seed(t *testing.T) {
	cli, out := setup(t)
	testutil.CreateUser(t, cli.db, "teacher", models.RoleTeacher)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o600))

	require.NoError(t, cli.run([]string{"lumosAdmin", "seed", "-file", path}))
	assert.Contains(t, out.String(), "Courses: 2 created, 0 updated")
	assert.Contains(t, out.String(), "Materials: 2 created, 0 updated")

	var course models.Course
	require.NoError(t, cli.db.Preload("Materials").Where("slug = ?", "html-fundamentals").First(&course).Error)
	assert.True(t, course.IsPublished)
	assert.Equal(t, "19.99", course.Price.StringFixed(2))
	require.Len(t, course.Materials, 2)

	var pandas models.Course
	require.NoError(t, cli.db.Where("slug = ?", "pandas-101").First(&pandas).Error)
	assert.True(t, pandas.IsFree())
	assert.False(t, pandas.IsPublished)

	// a second run updates in place
	out.Reset()
	require.NoError(t, cli.run([]string{"lumosAdmin", "seed", "-file", path}))
	assert.Contains(t, out.String(), "Categories: 0 created, 2 updated")
	assert.Contains(t, out.String(), "Courses: 0 created, 2 updated")

	var count int64
	cli.db.Model(&models.Material{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func Test_seedCatalog_rollsBackOnError(t *testing.T) {
	cli, _ := setup(t)

	broken := strings.Replace(catalogYAML, "difficulty: intermediate", "difficulty: expert", 1)
	_, err := seedCatalog(cli.db, strings.NewReader(broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instructor")

	testutil.CreateUser(t, cli.db, "teacher", models.RoleTeacher)
	_, err = seedCatalog(cli.db, strings.NewReader(broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid difficulty "expert"`)

	var count int64
	cli.db.Model(&models.Category{}).Count(&count)
	assert.Zero(t, count)

	_, err = seedCatalog(cli.db, strings.NewReader("courses: [oops"))
	assert.Error(t, err)

	cli.db.Model(&models.Course{}).Count(&count)
	assert.Zero(t, count)
}
