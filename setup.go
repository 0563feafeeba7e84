package main

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/digitalbox/go-digitalbox-server/global"
	"github.com/digitalbox/go-digitalbox-server/repository"
	"github.com/digitalbox/go-digitalbox-server/types"
)

// Configure DB Repositories and create DB Selector
func ConfigDBSelector() repository.DBSelector {
	// configure Repository (couchDB)
	repoUrl := global.Conf.CouchDB.Scheme + "://" + global.Conf.CouchDB.Host + ":" + strconv.Itoa(global.Conf.CouchDB.Port)
	userRepo, userRepoErr := repository.NewCouchDBRepository(repoUrl, repository.User, global.Conf.CouchDB.Username, global.Conf.CouchDB.Password, false)
	collegueRepo, collegueRepoErr := repository.NewCouchDBRepository(repoUrl, repository.Collegue, global.Conf.CouchDB.Username, global.Conf.CouchDB.Password, false)
	complaintRepo, complaintRepoErr := repository.NewCouchDBRepository(repoUrl, repository.Complaint, global.Conf.CouchDB.Username, global.Conf.CouchDB.Password, false)
	ticketRepo, ticketRepoErr := repository.NewCouchDBRepository(repoUrl, repository.Ticket, global.Conf.CouchDB.Username, global.Conf.CouchDB.Password, false)
	documentRequestRepo, drErr := repository.NewCouchDBRepository(repoUrl, repository.DocumentRequest, global.Conf.CouchDB.Username, global.Conf.CouchDB.Password, false)
	documentRepo, documentRepoErr := repository.NewCouchDBRepository(repoUrl, repository.Document, global.Conf.CouchDB.Username, global.Conf.CouchDB.Password, false)
	archiveRepo, archiveRepoErr := repository.NewCouchDBRepository(repoUrl, repository.ComplaintArchive, global.Conf.CouchDB.Username, global.Conf.CouchDB.Password, false)

	repoErr := errors.Join(userRepoErr, collegueRepoErr, complaintRepoErr, ticketRepoErr, drErr, documentRepoErr, archiveRepoErr)
	if repoErr != nil {
		global.Logger.Log("error", "Failed to create repositories", "error", repoErr.Error())
		panic(repoErr)
	}

	// REPOSITORY definitions
	dbSelector := repository.NewCouchDBSelector()
	dbSelector.AddDB(userRepo)
	dbSelector.AddDB(collegueRepo)
	dbSelector.AddDB(complaintRepo)
	dbSelector.AddDB(ticketRepo)
	dbSelector.AddDB(documentRequestRepo)
	dbSelector.AddDB(documentRepo)
	dbSelector.AddDB(archiveRepo)

	return dbSelector
}

// ConfigS3Storage configures the S3 client, uploader, downloader and presigner
func ConfigS3Storage(conf *global.Config, env *types.Environment) {
	credentials := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(conf.Storage.Key, conf.Storage.Secret, ""))
	awsConf, err := config.LoadDefaultConfig(context.TODO(), config.WithCredentialsProvider(credentials), config.WithRegion(conf.Storage.Region))
	if err != nil {
		panic(err)
	}
	s3Client := s3.NewFromConfig(awsConf)
	uploader := manager.NewUploader(s3Client)
	downloader := manager.NewDownloader(s3Client)
	env.AddS3Uploader(uploader)
	env.AddS3Downloader(downloader)

	env.S3Client = s3Client
	env.S3PresignClient = s3.NewPresignClient(s3Client)
}

// ConfigDynamoDB configures the DynamoDB client backing the chat log
func ConfigDynamoDB(conf *global.Config, env *types.Environment) repository.ChatLog {
	credentials := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(conf.Storage.Key, conf.Storage.Secret, ""))
	awsConf, err := config.LoadDefaultConfig(context.TODO(), config.WithCredentialsProvider(credentials), config.WithRegion(conf.Storage.Region))
	if err != nil {
		panic(err)
	}
	dynamoClient := dynamodb.NewFromConfig(awsConf)
	env.DynamoClient = dynamoClient

	return repository.NewDynamoChatLog(dynamoClient, conf.DynamoDB.ChatTable, conf.DynamoDB.ChatIndex)
}

// ConfigCronJobs schedules the nightly summary cache warmup for every
// complaint with an open ticket
func ConfigCronJobs(dbSelector repository.DBSelector, env *types.Environment) {
	warmup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		ticketRepo, tErr := dbSelector.ChooseDB(repository.Ticket)
		if tErr != nil {
			global.Logger.Log("error", "ticket repository unavailable", "error", tErr.Error())
			return
		}
		selector := map[string]interface{}{"ticket_status": "open"}
		docs, fErr := ticketRepo.Find(ctx, selector, nil, 1000)
		if fErr != nil {
			global.Logger.Log("error", "failed to list open tickets", "error", fErr.Error())
			return
		}
		for _, doc := range docs {
			var ticket types.Ticket
			if uErr := json.Unmarshal(doc, &ticket); uErr != nil {
				continue
			}
			task, tskErr := types.NewChatSummaryTask(&types.ChatSummaryTask{ComplaintID: ticket.ComplaintID})
			if tskErr != nil {
				continue
			}
			if _, qErr := env.TaskClient.Enqueue(task); qErr != nil {
				global.Logger.Log("error", "failed to enqueue summary warmup", "error", qErr.Error())
			}
		}
	}

	env.Cron.AddFunc("@every 24h", warmup)
	env.Cron.Start()
}
