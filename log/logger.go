/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

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

package log

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
)

type silentLogger struct {
	log.Logger
}

func newSilent() *silentLogger {
	l := new(silentLogger)
	l.SetOutput(ioutil.Discard)
	return l
}

func (l *silentLogger) Error(v ...interface{})                 { osExit(1) }
func (l *silentLogger) Errorf(format string, v ...interface{}) { osExit(1) }
func (l *silentLogger) Info(v ...interface{})                  {}
func (l *silentLogger) Infof(format string, v ...interface{})  {}
func (l *silentLogger) Debug(v ...interface{})                 {}
func (l *silentLogger) Debugf(format string, v ...interface{}) {}

func (l *silentLogger) GetLogger() *log.Logger {
	return &l.Logger
}

type errorLogger struct {
	log.Logger
}

func newError(out io.Writer, prefix string, flag int) *errorLogger {
	l := new(errorLogger)
	l.SetOutput(out)
	l.SetPrefix(prefix)
	l.SetFlags(flag)
	return l
}

func (l *errorLogger) Error(v ...interface{}) {
	_ = l.Output(2, "[ERROR] "+fmt.Sprint(v...))
	osExit(1)
}

func (l *errorLogger) Errorf(format string, v ...interface{}) {
	_ = l.Output(2, "[ERROR] "+fmt.Sprintf(format, v...))
	osExit(1)
}

func (l *errorLogger) Info(v ...interface{})                  {}
func (l *errorLogger) Infof(format string, v ...interface{})  {}
func (l *errorLogger) Debug(v ...interface{})                 {}
func (l *errorLogger) Debugf(format string, v ...interface{}) {}

func (l *errorLogger) GetLogger() *log.Logger {
	return &l.Logger
}

type infoLogger struct {
	errorLogger
}

func newInfo(out io.Writer, prefix string, flag int) *infoLogger {
	l := new(infoLogger)
	l.SetOutput(out)
	l.SetPrefix(prefix)
	l.SetFlags(flag)
	return l
}

func (l *infoLogger) Info(v ...interface{}) {
	_ = l.Output(2, "[INFO] "+fmt.Sprint(v...))
}

func (l *infoLogger) Infof(format string, v ...interface{}) {
	_ = l.Output(2, "[INFO] "+fmt.Sprintf(format, v...))
}

type debugLogger struct {
	infoLogger
}

func newDebug(out io.Writer, prefix string, flag int) *debugLogger {
	l := new(debugLogger)
	l.SetOutput(out)
	l.SetPrefix(prefix)
	l.SetFlags(flag)
	return l
}

func (l *debugLogger) Debug(v ...interface{}) {
	_ = l.Output(2, "[DEBUG] "+fmt.Sprint(v...))
}

func (l *debugLogger) Debugf(format string, v ...interface{}) {
	_ = l.Output(2, "[DEBUG] "+fmt.Sprintf(format, v...))
}
