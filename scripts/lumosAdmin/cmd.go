package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
	"gorm.io/gorm"

	"lumos/config"
	"lumos/models"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminEmail    = "admin@lumoslearning.com"
	defaultAdminPassword = "admin123"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db  *gorm.DB
	out io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  setup-admin                             - create the default superuser when no admin exists")
	fmt.Fprintln(cli.out, "  create-admin -username NAME -email EMAIL - create a superuser, the password is prompted next")
	fmt.Fprintln(cli.out, "  seed -file catalog.yaml                 - load categories, courses and materials")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAdminCmd := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	createAdminCmd.SetOutput(cli.out)
	createAdminUname := createAdminCmd.String("username", "", "The admin's username.")
	createAdminEmail := createAdminCmd.String("email", "", "The admin's email. The password will be prompted next.")

	seedCmd := flag.NewFlagSet("seed", flag.ContinueOnError)
	seedCmd.SetOutput(cli.out)
	seedFile := seedCmd.String("file", "catalog.yaml", "YAML file describing the catalog.")

	switch args[1] {
	case "setup-admin":
		password := os.Getenv("ADMIN_PASSWORD")
		if password == "" {
			password = defaultAdminPassword
		}
		created, err := cli.setupAdmin(password)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cli.out, "Superuser %s created.\n", defaultAdminUsername)
		} else {
			fmt.Fprintln(cli.out, "An admin already exists, nothing to do.")
		}
		return nil

	case "create-admin":
		if err := createAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createAdminUname == "" || *createAdminEmail == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			createAdminCmd.Usage()
			return errHelp
		}
		if err := cli.createAdmin(*createAdminUname, *createAdminEmail, string(pwd)); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Superuser %s created.\n", *createAdminUname)
		return nil

	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return err
		}
		f, err := os.Open(*seedFile)
		if err != nil {
			return pkgerrors.Wrap(err, "opening seed file")
		}
		defer f.Close()

		res, err := seedCatalog(cli.db, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Categories: %d created, %d updated\n", res.categoriesCreated, res.categoriesUpdated)
		fmt.Fprintf(cli.out, "Courses: %d created, %d updated\n", res.coursesCreated, res.coursesUpdated)
		fmt.Fprintf(cli.out, "Materials: %d created, %d updated\n", res.materialsCreated, res.materialsUpdated)
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}

// setupAdmin creates the default superuser unless an admin already exists
func (cli *commandLine) setupAdmin(password string) (bool, error) {
	var count int64
	if err := cli.db.Model(&models.User{}).
		Where("role = ? OR is_superuser = ?", models.RoleAdmin, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	return true, cli.createAdmin(defaultAdminUsername, defaultAdminEmail, password)
}

func (cli *commandLine) createAdmin(username, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	var count int64
	cli.db.Model(&models.User{}).Where("username = ? OR email = ?", username, email).Count(&count)
	if count > 0 {
		return fmt.Errorf("a user named %q or with email %q already exists", username, email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), config.AppConfig.SaltRound)
	if err != nil {
		return pkgerrors.Wrap(err, "hashing password")
	}

	return cli.db.Transaction(func(tx *gorm.DB) error {
		admin := models.User{
			Username:    username,
			Email:       email,
			Password:    string(hash),
			Role:        models.RoleAdmin,
			IsSuperuser: true,
			IsActive:    true,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserProfile{UserID: admin.ID, Timezone: "UTC", NotificationsEnabled: true, EmailNotifications: true}).Error
	})
}
