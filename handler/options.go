package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gamedrops/droplist/dispatch"
)

type Options struct {
	GitHubToken     string
	RepoOwner       string
	RepoName        string
	SubscribersPath string
	DropsPath       string

	SenderAddress    string
	EmailSubject     string
	DashboardLink    string
	UnsubscribeEmail string
	ApiBaseUrl       string
	ConfigurationSet string
	MaxRecipients    int
}

func GetOptions(getenv func(string) string) (*Options, error) {
	env := environment{getenv: getenv}
	return env.options()
}

type environment struct {
	getenv      func(string) string
	missingVars []string
	invalidVars []string
}

func (env *environment) options() (*Options, error) {
	opts := Options{}
	env.assign(&opts.GitHubToken, "GITHUB_TOKEN")
	env.assign(&opts.RepoOwner, "REPO_OWNER")
	env.assign(&opts.RepoName, "REPO_NAME")
	env.assign(&opts.SubscribersPath, "SUBSCRIBERS_PATH")
	env.assign(&opts.DropsPath, "DROPS_PATH")
	env.assign(&opts.SenderAddress, "SENDER_ADDRESS")
	env.assign(&opts.EmailSubject, "EMAIL_SUBJECT")
	env.assign(&opts.DashboardLink, "DASHBOARD_LINK")
	env.assign(&opts.UnsubscribeEmail, "UNSUBSCRIBE_EMAIL")
	env.assign(&opts.ApiBaseUrl, "API_BASE_URL")
	env.assign(&opts.ConfigurationSet, "CONFIGURATION_SET")
	env.assignInt(
		&opts.MaxRecipients, "MAX_RECIPIENTS", dispatch.MaxSubscribers,
	)

	if len(env.missingVars) != 0 {
		return nil, fmt.Errorf(
			"undefined environment variables:\n  %s",
			strings.Join(env.missingVars, "\n  "),
		)
	} else if len(env.invalidVars) != 0 {
		return nil, fmt.Errorf(
			"invalid environment variable values:\n  %s",
			strings.Join(env.invalidVars, "\n  "),
		)
	}
	return &opts, nil
}

func (env *environment) assign(opt *string, varname string) {
	if value := env.getenv(varname); value == "" {
		env.missingVars = append(env.missingVars, varname)
	} else {
		*opt = value
	}
}

func (env *environment) assignInt(opt *int, varname string, defaultVal int) {
	value := env.getenv(varname)

	if value == "" {
		*opt = defaultVal
	} else if parsed, err := strconv.Atoi(value); err != nil || parsed <= 0 {
		env.invalidVars = append(
			env.invalidVars, varname+": "+value,
		)
	} else {
		*opt = parsed
	}
}
