// Package s3blob implements the provider capabilities against AWS S3: the
// bucket is the container, S3 storage classes are the tiers, and STS caller
// identity is the session scope.
package s3blob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials/stscreds"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/aws/aws-sdk-go/service/sts/stsiface"

	"tiersweep/internal/models"
	"tiersweep/internal/provider"
)

const defaultScopeRole = "OrganizationAccountAccessRole"

// Options tune provider behavior that is account policy, not run input.
type Options struct {
	// ScopeRole is the role name assumed when switching account scope.
	ScopeRole string
	// RestoreDays is how long a rehydrated copy stays accessible.
	RestoreDays int
	// FetchTags pulls object tags during enumeration. One extra call per
	// matching object, so off by default.
	FetchTags bool

	Log *slog.Logger
}

// Client implements provider.SessionClient, provider.Lister and
// provider.TierSetter on top of S3 and STS.
type Client struct {
	sess    *session.Session
	s3      s3iface.S3API
	sts     stsiface.STSAPI
	profile string
	opts    Options
}

// New opens a client for the named shared-config profile. Credentials are
// not resolved until the first call, so this never blocks on login flows.
func New(profile string, opts Options) (*Client, error) {
	if opts.ScopeRole == "" {
		opts.ScopeRole = defaultScopeRole
	}
	if opts.RestoreDays <= 0 {
		opts.RestoreDays = 7
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}

	sess, err := newSession(profile)
	if err != nil {
		return nil, err
	}
	return &Client{
		sess:    sess,
		s3:      s3.New(sess),
		sts:     sts.New(sess),
		profile: profile,
		opts:    opts,
	}, nil
}

func newSession(profile string) (*session.Session, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		Profile:           profile,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open provider session for profile %q: %w", profile, err)
	}
	return sess, nil
}

// CurrentSession queries STS for the caller identity. Credential-resolution
// failures surface as provider.ErrNoSession so the guard knows to log in.
func (c *Client) CurrentSession(ctx context.Context) (*provider.SessionInfo, error) {
	out, err := c.sts.GetCallerIdentityWithContext(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		if isCredentialError(err) {
			return nil, fmt.Errorf("%w: %v", provider.ErrNoSession, err)
		}
		return nil, fmt.Errorf("failed to query caller identity: %w", err)
	}
	return &provider.SessionInfo{
		Profile:  c.profile,
		Account:  aws.StringValue(out.Account),
		Identity: aws.StringValue(out.Arn),
	}, nil
}

// Login rebuilds the session for the given profile and forces credential
// resolution immediately, so SSO or external-process prompts happen here
// rather than in the middle of the run.
func (c *Client) Login(ctx context.Context, profile string) error {
	sess, err := newSession(profile)
	if err != nil {
		return err
	}
	if _, err := sess.Config.Credentials.GetWithContext(ctx); err != nil {
		return fmt.Errorf("failed to authenticate profile %q: %w", profile, err)
	}
	c.sess = sess
	c.s3 = s3.New(sess)
	c.sts = sts.New(sess)
	c.profile = profile
	return nil
}

// SetActiveScope assumes the scope role in the target account and rebinds
// the service clients to it. Verification is the caller's job: scoped
// credentials are only resolved when the re-query happens.
func (c *Client) SetActiveScope(ctx context.Context, account string) error {
	roleARN := fmt.Sprintf("arn:aws:iam::%s:role/%s", account, c.opts.ScopeRole)
	creds := stscreds.NewCredentials(c.sess, roleARN)
	cfg := &aws.Config{Credentials: creds}
	c.s3 = s3.New(c.sess, cfg)
	c.sts = sts.New(c.sess, cfg)
	return nil
}

// ListBlobs buffers the full listing of container, keeping only objects in
// the requested tier. S3 has no server-side tier filter expression, so the
// narrowing happens per page on the reported storage class; the pipeline's
// window filter remains the authority.
func (c *Client) ListBlobs(ctx context.Context, container string, tier models.Tier) ([]models.BlobRecord, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(container),
		OptionalObjectAttributes: []*string{
			aws.String(s3.OptionalObjectAttributesRestoreStatus),
		},
	}

	var records []models.BlobRecord
	err := c.s3.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			rec := recordFromObject(container, obj)
			if tier.Valid() && rec.Tier != tier {
				continue
			}
			records = append(records, rec)
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list objects in %q: %w", container, err)
	}

	if c.opts.FetchTags {
		for i := range records {
			c.attachTags(ctx, &records[i])
		}
	}
	return records, nil
}

func recordFromObject(container string, obj *s3.Object) models.BlobRecord {
	rec := models.BlobRecord{
		Container:     container,
		Name:          aws.StringValue(obj.Key),
		Tier:          tierFromStorageClass(aws.StringValue(obj.StorageClass)),
		ContentLength: aws.Int64Value(obj.Size),
		ETag:          aws.StringValue(obj.ETag),
		Rehydration:   models.RehydrationNone,
	}
	if obj.LastModified != nil {
		rec.LastModified = obj.LastModified.UTC()
	}
	if rs := obj.RestoreStatus; rs != nil {
		switch {
		case aws.BoolValue(rs.IsRestoreInProgress):
			rec.Rehydration = models.RehydrationPending
		case rs.RestoreExpiryDate != nil:
			rec.Rehydration = models.RehydrationComplete
		}
	}
	return rec
}

func (c *Client) attachTags(ctx context.Context, rec *models.BlobRecord) {
	out, err := c.s3.GetObjectTaggingWithContext(ctx, &s3.GetObjectTaggingInput{
		Bucket: aws.String(rec.Container),
		Key:    aws.String(rec.Name),
	})
	if err != nil {
		// Tags are informational on the audit trail, never load-bearing.
		c.opts.Log.Debug("could not fetch object tags", "blob", rec.Name, "error", err)
		return
	}
	if len(out.TagSet) == 0 {
		return
	}
	tags := make(map[string]string, len(out.TagSet))
	for _, t := range out.TagSet {
		tags[aws.StringValue(t.Key)] = aws.StringValue(t.Value)
	}
	rec.Tags = tags
}

// SetTier changes one object's storage class with an in-place copy. S3
// rejects copies out of archived classes until the object is restored, so
// on InvalidObjectState a restore is started with the requested priority and
// reported via RehydrationStartedError; the operator re-runs once it lands.
func (c *Client) SetTier(ctx context.Context, container, name string, req models.MigrationRequest) error {
	_, err := c.s3.CopyObjectWithContext(ctx, &s3.CopyObjectInput{
		Bucket:            aws.String(container),
		Key:               aws.String(name),
		CopySource:        aws.String(url.PathEscape(container + "/" + name)),
		StorageClass:      aws.String(storageClass(req.TargetTier)),
		MetadataDirective: aws.String(s3.MetadataDirectiveCopy),
		TaggingDirective:  aws.String(s3.TaggingDirectiveCopy),
	})
	if err == nil {
		return nil
	}

	var aerr awserr.Error
	if errors.As(err, &aerr) && aerr.Code() == "InvalidObjectState" {
		return c.startRestore(ctx, container, name, req.Priority)
	}
	return fmt.Errorf("failed to change storage class of %q: %w", name, err)
}

func (c *Client) startRestore(ctx context.Context, container, name string, priority models.Priority) error {
	_, err := c.s3.RestoreObjectWithContext(ctx, &s3.RestoreObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(name),
		RestoreRequest: &s3.RestoreRequest{
			Days: aws.Int64(int64(c.opts.RestoreDays)),
			GlacierJobParameters: &s3.GlacierJobParameters{
				Tier: aws.String(restoreTier(priority)),
			},
		},
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == "RestoreAlreadyInProgress" {
			return &provider.RehydrationStartedError{Name: name, Priority: priority}
		}
		return fmt.Errorf("failed to start restore of %q: %w", name, err)
	}
	return &provider.RehydrationStartedError{Name: name, Priority: priority}
}

func isCredentialError(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Code() {
	case "NoCredentialProviders", "ExpiredToken", "ExpiredTokenException",
		"InvalidClientTokenId", "UnrecognizedClientException", "AccessDenied":
		return true
	}
	return false
}
