package file

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/samueltorres/r8counter/pkg/policy"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// PolicyService serves the name policy read from a YAML file and reloads it
// whenever the file changes. A reload that fails validation is discarded and
// the previous policy stays in force.
type PolicyService struct {
	viper     *viper.Viper
	logger    *logrus.Logger
	validator *policy.Validator
	mux       *sync.RWMutex
	reloads   chan struct{}
}

func NewPolicyService(file string, logger *logrus.Logger) (*PolicyService, error) {
	v := viper.New()
	v.SetConfigFile(file)
	err := v.ReadInConfig()
	if err != nil {
		return nil, errors.Wrap(err, "error reading in policy file config")
	}

	ps := &PolicyService{
		viper:   v,
		logger:  logger,
		mux:     &sync.RWMutex{},
		reloads: make(chan struct{}, 1),
	}

	err = ps.loadPolicy()
	if err != nil {
		return nil, errors.Wrap(err, "error loading policy")
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		ps.logger.WithField("file", e.Name).Info("policy file changed")
		if err := ps.loadPolicy(); err != nil {
			ps.logger.WithError(err).Error("keeping previous policy")
		}

		select {
		case ps.reloads <- struct{}{}:
		default:
		}
	})
	v.WatchConfig()

	return ps, nil
}

// ValidateName checks a name against the policy currently in force
func (ps *PolicyService) ValidateName(name string) error {
	ps.mux.RLock()
	v := ps.validator
	ps.mux.RUnlock()

	return v.ValidateName(name)
}

// Reloaded signals after every processed change of the policy file,
// successful or not.
func (ps *PolicyService) Reloaded() <-chan struct{} {
	return ps.reloads
}

func (ps *PolicyService) loadPolicy() error {
	var cfg policy.Config
	err := ps.viper.Unmarshal(&cfg)
	if err != nil {
		return errors.Wrap(err, "error on policy config unmarshal")
	}

	validator, err := policy.New(cfg)
	if err != nil {
		return errors.Wrap(err, "policy file is invalid")
	}

	ps.mux.Lock()
	defer ps.mux.Unlock()
	ps.validator = validator

	return nil
}
