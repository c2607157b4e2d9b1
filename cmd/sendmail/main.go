// Function sendmail starts an AWS session and hands over to package inquiry.
package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"

	"github.com/UKHomeOffice/inquirymail/internal/logging"
	"github.com/UKHomeOffice/inquirymail/internal/mailer"
	"github.com/UKHomeOffice/inquirymail/internal/mailtemplate"
	"github.com/UKHomeOffice/inquirymail/internal/settings"
	"github.com/UKHomeOffice/inquirymail/pkg/inquiry"
)

var sess *session.Session
var handler *inquiry.Handler

func init() {
	rt, err := settings.LoadRuntime(os.Getenv("DOTENV_FILE"))
	if err != nil {
		log.Fatalf("could not load runtime settings: %v", err)
	}

	logger := logging.New(rt.LogLevel)
	slog.SetDefault(logger)

	sess = session.Must(session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	}))

	provider, err := rt.Provider(sess)
	if err != nil {
		log.Fatalf("could not set up configuration source: %v", err)
	}

	tmpl, err := mailtemplate.Load(rt.TemplatePath)
	if err != nil {
		log.Fatalf("could not load mail template: %v", err)
	}

	handler = inquiry.NewHandler(provider, newSES,
		inquiry.WithLogger(logger),
		inquiry.WithTemplate(tmpl),
	)
}

// newSES returns a SES sender for the configured region
func newSES(region string) mailer.Sender {
	return mailer.NewSES(ses.New(sess, &aws.Config{Region: aws.String(region)}))
}

func main() {
	lambda.Start(handler.Handle)
}
