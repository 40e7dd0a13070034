/*
Copyright 2022 The Numaproj Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LookupEnvStringOr returns the value of key, or defaultValue when unset or empty.
func LookupEnvStringOr(key, defaultValue string) string {
	if v, existing := os.LookupEnv(key); existing && v != "" {
		return v
	}
	return defaultValue
}

// LookupEnvBoolOr returns the boolean value of key, or defaultValue when unset or empty.
func LookupEnvBoolOr(key string, defaultValue bool) (bool, error) {
	valStr, existing := os.LookupEnv(key)
	if !existing || valStr == "" {
		return defaultValue, nil
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		return false, fmt.Errorf("invalid value for env variable %q, value %q", key, valStr)
	}
	return val, nil
}

// LookupEnvListOr splits the comma separated value of key, or returns defaultValue when unset or empty.
func LookupEnvListOr(key string, defaultValue []string) []string {
	v, existing := os.LookupEnv(key)
	if !existing || v == "" {
		return defaultValue
	}
	var list []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			list = append(list, s)
		}
	}
	return list
}
