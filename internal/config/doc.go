// Package config defines configuration structures and validation for serpharvest.
package config
