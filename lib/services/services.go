// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package services

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-multierror"
)

// Service must be implemented by all Services
type Service interface {
	Start() error
	Stop() error
}

// Logger logs formatted strings at the different log levels.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// ServiceRegistry is a structure to manage core system Services.
// Services start in registration order and stop in reverse order.
type ServiceRegistry struct {
	services     map[reflect.Type]Service // map of types to service instances
	serviceTypes []reflect.Type           // all known service types, used to iterate through services
	started      int
	logger       Logger
}

// NewServiceRegistry creates an empty registry
func NewServiceRegistry(logger Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services: make(map[reflect.Type]Service),
		logger:   logger,
	}
}

// RegisterService stores a new service in the map. If a service of that type has been seen
// it is not registered again.
func (s *ServiceRegistry) RegisterService(service Service) {
	kind := reflect.TypeOf(service)
	if _, exists := s.services[kind]; exists {
		s.logger.Warnf("Tried to add service type %s that has already been seen", kind)
		return
	}
	s.services[kind] = service
	s.serviceTypes = append(s.serviceTypes, kind)
}

// StartAll calls `Service.Start()` for all registered services. If one fails
// the services already started are stopped again and the error is returned.
func (s *ServiceRegistry) StartAll() error {
	s.logger.Infof("Starting services: %v", s.serviceTypes)
	for _, typ := range s.serviceTypes {
		s.logger.Debugf("Starting service %s", typ)
		if err := s.services[typ].Start(); err != nil {
			startErr := fmt.Errorf("cannot start service %s: %w", typ, err)
			if stopErr := s.StopAll(); stopErr != nil {
				return multierror.Append(startErr, stopErr)
			}
			return startErr
		}
		s.started++
	}
	s.logger.Debugf("All %d services started.", s.started)
	return nil
}

// StopAll calls `Service.Stop()` for all started services in reverse order
// and returns every error encountered.
func (s *ServiceRegistry) StopAll() error {
	var result *multierror.Error
	for i := s.started - 1; i >= 0; i-- {
		typ := s.serviceTypes[i]
		s.logger.Debugf("Stopping service %s", typ)
		if err := s.services[typ].Stop(); err != nil {
			s.logger.Errorf("Error stopping service %s: %s", typ, err)
			result = multierror.Append(result, fmt.Errorf("stopping service %s: %w", typ, err))
		}
	}
	s.started = 0
	s.logger.Infof("All services stopped.")
	return result.ErrorOrNil()
}

// Get retrieves a service of the same type as srvc
func (s *ServiceRegistry) Get(srvc interface{}) Service {
	if reflect.TypeOf(srvc).Kind() != reflect.Ptr {
		s.logger.Warnf("expected a pointer but got %T", srvc)
		return nil
	}
	e := reflect.ValueOf(srvc)

	if s, ok := s.services[e.Type()]; ok {
		return s
	}
	s.logger.Warnf("unknown service type %T", srvc)
	return nil
}
